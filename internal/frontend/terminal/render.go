package terminal

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/catquest/internal/game/combat"
	"github.com/cory-johannsen/catquest/internal/game/content"
	"github.com/cory-johannsen/catquest/internal/game/report"
	"github.com/cory-johannsen/catquest/internal/user"
)

const barWidth = 20

// RenderUser formats the profile summary line.
func RenderUser(s Style, u user.User) string {
	breed := u.Breed
	if !u.HasBreed() {
		breed = "(none)"
	}
	return s.Colorf(BrightWhite, "%s", u.Name) +
		fmt.Sprintf("  Lv %d  XP %d  Coins %d  Breed %s", u.Level, u.ExperiencePoints, u.CatCoins, breed)
}

// RenderBreeds formats the numbered breed list.
func RenderBreeds(s Style, breeds []content.Breed) string {
	if len(breeds) == 0 {
		return s.Colorize(Dim, "No breeds available.") + "\n"
	}
	var b strings.Builder
	b.WriteString(s.Colorize(BrightYellow, "Choose your breed:") + "\n")
	for i, br := range breeds {
		fmt.Fprintf(&b, "  %s %s\n", s.Colorf(Cyan, "%2d.", i+1), br.Name)
	}
	return b.String()
}

// RenderDungeons formats the numbered dungeon list.
func RenderDungeons(s Style, dungeons []content.Dungeon) string {
	if len(dungeons) == 0 {
		return s.Colorize(Dim, "No dungeons available.") + "\n"
	}
	var b strings.Builder
	b.WriteString(s.Colorize(BrightYellow, "Choose a dungeon:") + "\n")
	for i, d := range dungeons {
		fmt.Fprintf(&b, "  %s %s %s\n", s.Colorf(Cyan, "%2d.", i+1), d.Name,
			s.Colorf(Dim, "(%d floor%s)", d.Floors, plural(d.Floors)))
	}
	return b.String()
}

// RenderReports formats recent battle history.
func RenderReports(s Style, reps []report.Report) string {
	if len(reps) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(s.Colorize(BrightYellow, "Recent battles:") + "\n")
	for _, r := range reps {
		fmt.Fprintf(&b, "  %-8s %-12s vs %-10s +%d XP +%d coins (%d turns)\n",
			resultColor(s, r.Result), r.DungeonID, r.Enemy, r.ExperienceGained, r.CoinsGained, r.Turns)
	}
	return b.String()
}

// RenderStatus formats both combatants with HP bars.
func RenderStatus(s Style, st combat.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", s.Colorize(Bold, st.DungeonName), s.Colorf(Dim, "floor %d", st.Floor))
	p := st.Player
	fmt.Fprintf(&b, "  %-12s Lv %-2d %s %d/%d\n", p.Name, p.Level, hpBar(s, p.CurrentHP, p.MaxHP), p.CurrentHP, p.MaxHP)
	if e := st.Enemy; e != nil {
		fmt.Fprintf(&b, "  %-12s       %s %d/%d\n", e.Name, hpBar(s, e.CurrentHP, e.MaxHP), e.CurrentHP, e.MaxHP)
	}
	return b.String()
}

// RenderLog formats log lines starting at index from.
func RenderLog(s Style, log []string, from int) string {
	var b strings.Builder
	for i := max(from, 0); i < len(log); i++ {
		b.WriteString("  " + colorLine(s, log[i]) + "\n")
	}
	return b.String()
}

func colorLine(s Style, line string) string {
	switch {
	case strings.Contains(line, "damage"):
		return s.Colorize(Red, line)
	case strings.Contains(line, "level"), strings.Contains(line, "rose by"):
		return s.Colorize(BrightGreen, line)
	case strings.Contains(line, "won the battle"), strings.Contains(line, "got away"):
		return s.Colorize(BrightYellow, line)
	case strings.Contains(line, "collapsed"):
		return s.Colorize(BrightRed, line)
	default:
		return line
	}
}

func resultColor(s Style, result string) string {
	switch result {
	case "victory":
		return s.Colorize(Green, result)
	case "defeat":
		return s.Colorize(Red, result)
	default:
		return s.Colorize(Yellow, result)
	}
}

func hpBar(s Style, cur, maxHP int) string {
	filled := 0
	if maxHP > 0 {
		filled = cur * barWidth / maxHP
	}
	color := Green
	switch {
	case cur*4 <= maxHP:
		color = Red
	case cur*2 <= maxHP:
		color = Yellow
	}
	return "[" + s.Colorize(color, strings.Repeat("#", filled)) + strings.Repeat(".", barWidth-filled) + "]"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
