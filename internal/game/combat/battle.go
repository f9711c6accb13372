package combat

import (
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/game/dice"
	"github.com/cory-johannsen/catquest/internal/game/progression"
	"github.com/cory-johannsen/catquest/internal/observe"
)

// DefaultFleeChancePercent is the flee success chance used by DefaultOptions.
const DefaultFleeChancePercent = 50

// Setup describes the participants of a new battle.
type Setup struct {
	Floor       int
	DungeonName string
	Player      PlayerCombatant
	Enemy       EnemyCombatant
}

// Options tunes battle rules.
type Options struct {
	// FleeChancePercent is the percent chance a Flee command succeeds.
	FleeChancePercent int
	// DefendMitigates applies player Defense to the enemy attack following Defend.
	DefendMitigates bool
	// Table is the progression table; nil uses progression.Default().
	Table *progression.Table
	// Source supplies randomness for flee checks; nil uses crypto/rand.
	Source dice.Source
	// Language selects the battle log wording; empty means English.
	Language Language
	// Logger receives debug traces; nil disables them.
	Logger *zap.Logger
}

// DefaultOptions returns the stock rules: 50% flee, no defend mitigation.
func DefaultOptions() Options {
	return Options{FleeChancePercent: DefaultFleeChancePercent}
}

// Outcome summarizes a finished battle for persistence.
type Outcome struct {
	Result           Result
	Level            int
	Experience       int
	ExperienceGained int
	CoinsGained      int
	Turns            int
}

// Battle is one battle session. All methods are safe for concurrent use; a
// command fully resolves before the next one is examined.
type Battle struct {
	mu     sync.Mutex
	state  State
	opts   Options
	roller *dice.Roller
	msg    messages
	logger *zap.Logger

	experienceGained int
	coinsGained      int
	turns            int

	subject *observe.Subject[State]
}

// NewBattle starts a battle with the player to act first.
//
// Precondition: setup.Player.MaxHP > 0; setup.Enemy.MaxHP > 0.
// Postcondition: Phase is PhaseAwaitingPlayerCommand and the log holds the
// enemy's appearance message.
func NewBattle(setup Setup, opts Options) *Battle {
	if opts.Table == nil {
		opts.Table = progression.Default()
	}
	if opts.Source == nil {
		opts.Source = dice.NewCryptoSource()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	msg := messagesFor(opts.Language)
	enemy := setup.Enemy
	player := setup.Player
	if player.CurrentHP > player.MaxHP {
		player.CurrentHP = player.MaxHP
	}
	if enemy.CurrentHP > enemy.MaxHP {
		enemy.CurrentHP = enemy.MaxHP
	}

	b := &Battle{
		state: State{
			Floor:       setup.Floor,
			DungeonName: setup.DungeonName,
			Player:      player,
			Enemy:       &enemy,
			Log:         []string{msg.msgAppears(enemy.Name)},
			Phase:       PhaseAwaitingPlayerCommand,
			Result:      ResultNone,
		},
		opts:   opts,
		roller: dice.NewLoggedRoller(opts.Source, logger),
		msg:    msg,
		logger: logger,
	}
	b.subject = observe.NewSubject(b.state.clone())
	return b
}

// Snapshot returns a copy of the current state.
func (b *Battle) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.clone()
}

// Watch subscribes to state changes; the current state is delivered first.
func (b *Battle) Watch(buf int) (<-chan State, func()) {
	return b.subject.Subscribe(buf)
}

// Outcome summarizes progress made in this battle so far.
func (b *Battle) Outcome() Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Outcome{
		Result:           b.state.Result,
		Level:            b.state.Player.Level,
		Experience:       b.state.Player.Experience,
		ExperienceGained: b.experienceGained,
		CoinsGained:      b.coinsGained,
		Turns:            b.turns,
	}
}

// Submit resolves a player command.
//
// Postcondition: Returns true iff the command was Attack, Defend, or Flee and
// the battle was awaiting a player command. Outside that phase nothing changes
// and nothing is logged. Unrecognized input logs a message and leaves the
// phase unchanged.
func (b *Battle) Submit(input string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.Phase != PhaseAwaitingPlayerCommand {
		return false
	}

	kind := ParseCommand(input)
	switch kind {
	case CommandAttack:
		b.playerAttack()
	case CommandDefend:
		b.playerDefend()
	case CommandFlee:
		b.playerFlee()
	default:
		b.appendLog(b.msg.msgUnknown(input))
		b.publish()
		return false
	}
	b.turns++
	b.logger.Debug("player command resolved",
		zap.String("command", kind.String()),
		zap.Stringer("phase", b.state.Phase),
	)
	b.publish()
	return true
}

// ResolveEnemyTurn runs the enemy's attack.
//
// Postcondition: Returns true iff the battle was awaiting the enemy turn.
func (b *Battle) ResolveEnemyTurn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.Phase != PhaseAwaitingEnemyTurn || b.state.Enemy == nil {
		return false
	}
	enemy := b.state.Enemy
	player := &b.state.Player

	dmg := enemy.Attack
	if b.state.Defending && b.opts.DefendMitigates {
		dmg = max(0, dmg-player.Defense)
	}
	b.state.Defending = false

	player.ApplyDamage(dmg)
	b.appendLog(b.msg.msgAttacks(enemy.Name), b.msg.msgPlayerDamaged(player.Name, dmg))

	if player.IsDead() {
		b.appendLog(b.msg.msgDefeat(player.Name))
		b.finish(PhaseDefeat, ResultDefeat)
	} else {
		b.state.Phase = PhaseAwaitingPlayerCommand
	}
	b.publish()
	return true
}

// Dismiss acknowledges a finished battle.
//
// Postcondition: Returns true iff the battle was in Victory, Defeat, or Fled.
func (b *Battle) Dismiss() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state.Phase {
	case PhaseVictory, PhaseDefeat, PhaseFled:
		b.state.Phase = PhaseDismissed
		b.publish()
		b.subject.Close()
		return true
	default:
		return false
	}
}

func (b *Battle) playerAttack() {
	player := &b.state.Player
	enemy := b.state.Enemy
	dmg := player.Attack
	enemy.ApplyDamage(dmg)
	b.appendLog(b.msg.msgAttacks(player.Name), b.msg.msgEnemyDamaged(enemy.Name, dmg))
	if enemy.IsDead() {
		b.win()
		return
	}
	b.state.Phase = PhaseAwaitingEnemyTurn
}

func (b *Battle) playerDefend() {
	b.state.Defending = true
	b.appendLog(b.msg.msgDefends(b.state.Player.Name))
	b.state.Phase = PhaseAwaitingEnemyTurn
}

func (b *Battle) playerFlee() {
	check := b.roller.Chance("flee", b.opts.FleeChancePercent)
	if check.Success {
		b.appendLog(b.msg.msgFled(b.state.Player.Name))
		b.finish(PhaseFled, ResultFled)
		return
	}
	b.appendLog(b.msg.msgFleeBlocked())
	b.state.Phase = PhaseAwaitingEnemyTurn
}

// win awards rewards and runs the level-up loop. Thresholds are cumulative so
// surplus experience carries over between iterations without extra arithmetic.
func (b *Battle) win() {
	player := &b.state.Player
	enemy := b.state.Enemy
	table := b.opts.Table

	b.appendLog(b.msg.msgDefeated(enemy.Name))

	xp := max(0, enemy.ExperienceReward)
	coins := max(0, enemy.CoinReward)
	player.Experience += xp
	b.experienceGained += xp
	b.coinsGained += coins
	b.appendLog(b.msg.msgExperience(player.Name, xp))
	if coins > 0 {
		b.appendLog(b.msg.msgCoins(player.Name, coins))
	}

	for player.Level < table.MaxLevel() && player.Experience >= table.ExperienceThreshold(player.Level+1) {
		prev := player.Level
		player.Level++
		player.MaxHP = progression.MaxHPForLevel(player.Level)
		player.Attack = progression.AttackForLevel(player.Level)
		player.Defense = progression.DefenseForLevel(player.Level)
		player.CurrentHP = player.MaxHP

		b.appendLog(
			b.msg.msgLevelUp(player.Name, player.Level),
			b.msg.msgStatRose(b.msg.maxHP, player.MaxHP-progression.MaxHPForLevel(prev)),
			b.msg.msgStatRose(b.msg.attack, player.Attack-progression.AttackForLevel(prev)),
			b.msg.msgStatRose(b.msg.defense, player.Defense-progression.DefenseForLevel(prev)),
		)
		b.logger.Debug("level up", zap.String("player", player.Name), zap.Int("level", player.Level))
	}

	b.appendLog(b.msg.msgVictory(player.Name))
	b.finish(PhaseVictory, ResultVictory)
	b.state.Enemy = nil
}

func (b *Battle) finish(phase Phase, result Result) {
	b.state.Phase = phase
	b.state.Result = result
	b.state.Defending = false
}

func (b *Battle) appendLog(lines ...string) {
	b.state.Log = append(b.state.Log, lines...)
}

// publish must be called with b.mu held.
func (b *Battle) publish() {
	b.subject.Publish(b.state.clone())
}
