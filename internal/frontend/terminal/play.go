package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/game/combat"
	"github.com/cory-johannsen/catquest/internal/game/content"
	"github.com/cory-johannsen/catquest/internal/gameserver"
	"github.com/cory-johannsen/catquest/internal/user"
)

// Game drives the screens in order: welcome, registration, breed selection,
// then dungeon selection and battles until the player quits.
type Game struct {
	profile *gameserver.ProfileHandler
	combat  *gameserver.CombatHandler
	con     *Console
	logger  *zap.Logger
}

// NewGame creates a Game.
//
// Precondition: all arguments must be non-nil.
func NewGame(profile *gameserver.ProfileHandler, combatH *gameserver.CombatHandler, con *Console, logger *zap.Logger) *Game {
	return &Game{profile: profile, combat: combatH, con: con, logger: logger}
}

// Run plays until the player quits or input ends.
//
// Postcondition: Returns nil on quit or end of input; returns the load error
// when the profile cannot be read.
func (g *Game) Run(ctx context.Context) error {
	s := g.con.Style
	g.con.Writeln(s.Colorize(Bold+BrightYellow, "=== Cat Quest ==="))

	u, next, err := g.profile.Welcome(ctx)
	if err != nil {
		g.con.Writeln(s.Colorize(BrightRed, "Could not load your profile."))
		return err
	}
	g.con.Writeln("Welcome, " + RenderUser(s, u))

	if err := g.register(ctx, u); err != nil {
		return quitOnEOF(err)
	}
	if next == gameserver.ScreenBreedSelection {
		if err := g.chooseBreed(ctx); err != nil {
			return quitOnEOF(err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		dungeonID, quit, err := g.chooseDungeon(ctx)
		if err != nil || quit {
			return quitOnEOF(err)
		}
		if err := g.battle(ctx, dungeonID); err != nil {
			return quitOnEOF(err)
		}
	}
}

func quitOnEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (g *Game) register(ctx context.Context, u user.User) error {
	s := g.con.Style
	for {
		name, err := g.con.Prompt(fmt.Sprintf("Your name [%s]: ", u.Name))
		if err != nil {
			return err
		}
		if name == "" {
			return nil
		}
		_, err = g.profile.Register(ctx, name)
		switch {
		case err == nil:
			g.con.Writef("Nice to meet you, %s!", s.Colorize(BrightWhite, name))
			return nil
		case errors.Is(err, user.ErrInvalidName):
			g.con.Writef("Names must be 1 to %d characters.", user.MaxNameLength)
		default:
			g.con.Writeln(s.Colorize(Yellow, "Could not save your name; it is kept for this session."))
			return nil
		}
	}
}

func (g *Game) chooseBreed(ctx context.Context) error {
	s := g.con.Style
	breeds := g.profile.Breeds()
	g.con.Write(RenderBreeds(s, breeds))
	if len(breeds) == 0 {
		return nil
	}
	for {
		in, err := g.con.Prompt("Breed number or name: ")
		if err != nil {
			return err
		}
		name := in
		if n, convErr := strconv.Atoi(in); convErr == nil {
			b, ok := content.At(breeds, n-1, g.logger)
			if !ok {
				g.con.Writeln("No breed with that number.")
				continue
			}
			name = b.Name
		}
		_, err = g.profile.SelectBreed(ctx, name)
		switch {
		case err == nil:
			g.con.Writef("You are a %s cat.", s.Colorize(BrightWhite, name))
			return nil
		case errors.Is(err, gameserver.ErrUnknownBreed), errors.Is(err, user.ErrInvalidBreed):
			g.con.Writeln("Pick one of the listed breeds.")
		default:
			g.con.Writeln(s.Colorize(Yellow, "Could not save your breed; it is kept for this session."))
			return nil
		}
	}
}

func (g *Game) chooseDungeon(ctx context.Context) (dungeonID string, quit bool, err error) {
	s := g.con.Style
	if u, ok := g.profile.Current(); ok {
		g.con.Writeln("")
		g.con.Writeln(RenderUser(s, u))
	}
	if reps, err := g.profile.Reports(ctx, 3); err == nil {
		g.con.Write(RenderReports(s, reps))
	}
	dungeons := g.profile.Dungeons()
	g.con.Write(RenderDungeons(s, dungeons))

	for {
		in, err := g.con.Prompt("Dungeon number, or q to quit: ")
		if err != nil {
			return "", false, err
		}
		switch strings.ToLower(in) {
		case "q", "quit", "exit":
			g.con.Writeln("See you next time!")
			return "", true, nil
		case "":
			continue
		}
		if n, convErr := strconv.Atoi(in); convErr == nil {
			d, ok := content.At(dungeons, n-1, g.logger)
			if !ok {
				g.con.Writeln("No dungeon with that number.")
				continue
			}
			return d.ID, false, nil
		}
		return in, false, nil
	}
}

func (g *Game) battle(ctx context.Context, dungeonID string) error {
	s := g.con.Style
	breed := ""
	if u, ok := g.profile.Current(); ok && u.HasBreed() {
		breed = u.Breed
	}
	started, err := g.combat.StartBattle(ctx, dungeonID, breed)
	if err != nil {
		return err
	}
	id := started.ID
	st := started.State
	g.con.Writeln("")
	g.con.Write(RenderStatus(s, st))
	g.con.Write(RenderLog(s, st.Log, 0))
	seen := len(st.Log)

	for !st.Phase.Terminal() {
		var cmdErr error
		switch st.Phase {
		case combat.PhaseAwaitingPlayerCommand:
			in, err := g.con.Prompt(fmt.Sprintf("Command (%s): ", strings.Join(combat.Commands(), "/")))
			if err != nil {
				return err
			}
			if in == "help" || in == "?" {
				g.con.Writeln("attack (たたかう), defend (ぼうぎょ), flee (にげる)")
				continue
			}
			st, _, cmdErr = g.combat.Command(ctx, id, in)
		case combat.PhaseAwaitingEnemyTurn:
			st, _, cmdErr = g.combat.EnemyTurn(ctx, id)
		}
		if errors.Is(cmdErr, combat.ErrBattleNotFound) {
			return cmdErr
		}
		if cmdErr != nil {
			g.con.Writeln(s.Colorize(Yellow, "Your progress could not be saved yet."))
		}
		g.con.Write(RenderLog(s, st.Log, seen))
		seen = len(st.Log)
		if !st.Phase.Terminal() && st.Phase == combat.PhaseAwaitingPlayerCommand {
			g.con.Write(RenderStatus(s, st))
		}
	}
	return g.dismiss(ctx, id)
}

// dismiss acknowledges the finished battle, offering a retry while saving fails.
func (g *Game) dismiss(ctx context.Context, id string) error {
	s := g.con.Style
	for {
		_, readErr := g.con.Prompt("Press Enter to continue")
		_, err := g.combat.Dismiss(ctx, id)
		if readErr != nil {
			return readErr
		}
		if err == nil {
			return nil
		}
		g.con.Writeln(s.Colorize(Yellow, "Could not save your progress. Press Enter to retry."))
	}
}
