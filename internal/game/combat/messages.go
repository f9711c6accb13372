package combat

import "fmt"

// Language selects the wording of the battle log.
type Language string

// Supported battle log languages.
const (
	LanguageEnglish  Language = "en"
	LanguageJapanese Language = "ja"
)

// messages holds one format string per log line kind.
type messages struct {
	appears, attacks, enemyDamaged, playerDamaged string
	defends, fled, fleeBlocked, unknown           string
	defeated, experience, coins, levelUp          string
	statRose, victory, defeat                     string
	maxHP, attack, defense                        string
}

var catalogs = map[Language]messages{
	LanguageEnglish: {
		appears:       "%s appears!",
		attacks:       "%s attacks!",
		enemyDamaged:  "%s takes %d damage!",
		playerDamaged: "%s takes %d damage!",
		defends:       "%s is on guard!",
		fled:          "%s got away safely!",
		fleeBlocked:   "But the way was blocked!",
		unknown:       "%s can't be used yet!",
		defeated:      "%s is defeated!",
		experience:    "%s gains %d experience!",
		coins:         "%s finds %d cat coins!",
		levelUp:       "%s reached level %d!",
		statRose:      "%s rose by %d!",
		victory:       "%s won the battle!",
		defeat:        "%s collapsed...",
		maxHP:         "Max HP",
		attack:        "Attack",
		defense:       "Defense",
	},
	LanguageJapanese: {
		appears:       "%sがあらわれた！",
		attacks:       "%sのこうげき！",
		enemyDamaged:  "%sに %d のダメージ！",
		playerDamaged: "%sは %d のダメージをうけた！",
		defends:       "%sはみをまもっている！",
		fled:          "%sはうまくにげだした！",
		fleeBlocked:   "しかし回り込まれてしまった！",
		unknown:       "%s はまだつかえない！",
		defeated:      "%sをたおした！",
		experience:    "%sは %d のけいけんちをかくとく！",
		coins:         "%sは %d ねこコインをてにいれた！",
		levelUp:       "%sはレベル %d にあがった！",
		statRose:      "%sが %d あがった！",
		victory:       "%sはしょうりした！",
		defeat:        "%sはたおれてしまった...",
		maxHP:         "さいだいHP",
		attack:        "こうげきりょく",
		defense:       "ぼうぎょりょく",
	},
}

// ValidLanguage reports whether l has a message catalog.
func ValidLanguage(l Language) bool {
	_, ok := catalogs[l]
	return ok
}

// messagesFor returns the catalog for l, falling back to English.
func messagesFor(l Language) messages {
	if m, ok := catalogs[l]; ok {
		return m
	}
	return catalogs[LanguageEnglish]
}

func (m messages) msgAppears(enemy string) string { return fmt.Sprintf(m.appears, enemy) }
func (m messages) msgAttacks(actor string) string { return fmt.Sprintf(m.attacks, actor) }
func (m messages) msgEnemyDamaged(enemy string, dmg int) string {
	return fmt.Sprintf(m.enemyDamaged, enemy, dmg)
}
func (m messages) msgPlayerDamaged(player string, dmg int) string {
	return fmt.Sprintf(m.playerDamaged, player, dmg)
}
func (m messages) msgDefends(player string) string { return fmt.Sprintf(m.defends, player) }
func (m messages) msgFled(player string) string    { return fmt.Sprintf(m.fled, player) }
func (m messages) msgFleeBlocked() string          { return m.fleeBlocked }
func (m messages) msgUnknown(cmd string) string    { return fmt.Sprintf(m.unknown, cmd) }
func (m messages) msgDefeated(enemy string) string { return fmt.Sprintf(m.defeated, enemy) }
func (m messages) msgExperience(player string, xp int) string {
	return fmt.Sprintf(m.experience, player, xp)
}
func (m messages) msgCoins(player string, coins int) string {
	return fmt.Sprintf(m.coins, player, coins)
}
func (m messages) msgLevelUp(player string, level int) string {
	return fmt.Sprintf(m.levelUp, player, level)
}
func (m messages) msgStatRose(stat string, delta int) string {
	return fmt.Sprintf(m.statRose, stat, delta)
}
func (m messages) msgVictory(player string) string { return fmt.Sprintf(m.victory, player) }
func (m messages) msgDefeat(player string) string  { return fmt.Sprintf(m.defeat, player) }
