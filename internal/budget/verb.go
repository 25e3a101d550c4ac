package budget

// Verb is the closed set of commands the interpreter understands.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbAdd
	VerbSave
	VerbSpend
	VerbBack
	VerbGoal
	VerbAutosave
	VerbTheme
	VerbDeleteMoney
	VerbReport
	VerbUndo
	VerbHelp

	verbCount
)

var verbNames = [verbCount]string{
	VerbUnknown:     "unknown",
	VerbAdd:         "add",
	VerbSave:        "save",
	VerbSpend:       "spend",
	VerbBack:        "back",
	VerbGoal:        "goal",
	VerbAutosave:    "autosave",
	VerbTheme:       "theme",
	VerbDeleteMoney: "delete money",
	VerbReport:      "report",
	VerbUndo:        "undo",
	VerbHelp:        "help",
}

func (v Verb) String() string {
	if v < 0 || v >= verbCount {
		return "unknown"
	}
	return verbNames[v]
}

// verbAliases maps a lowercased first token to its verb. "delete", "clear"
// and "wipe" only resolve to VerbDeleteMoney when followed by "money".
var verbAliases = map[string]Verb{
	"add": VerbAdd, "deposit": VerbAdd,
	"save": VerbSave, "move": VerbSave, "mv": VerbSave,
	"spend": VerbSpend, "pay": VerbSpend,
	"back": VerbBack, "return": VerbBack, "withdraw": VerbBack,
	"goal":     VerbGoal,
	"autosave": VerbAutosave,
	"theme":    VerbTheme,
	"report":   VerbReport,
	"undo":     VerbUndo,
	"help":     VerbHelp,
}

var deleteAliases = map[string]bool{"delete": true, "clear": true, "wipe": true}

// Resolve picks the verb for an already tokenized, lowercased command.
func Resolve(tokens []string) Verb {
	if len(tokens) == 0 {
		return VerbUnknown
	}
	if deleteAliases[tokens[0]] {
		if len(tokens) >= 2 && lower(tokens[1]) == "money" {
			return VerbDeleteMoney
		}
		return VerbUnknown
	}
	if v, ok := verbAliases[tokens[0]]; ok {
		return v
	}
	return VerbUnknown
}

const helpText = `Commands:
- add AMOUNT
- save AMOUNT [note]
- spend AMOUNT [note]
- back AMOUNT [note]
- goal AMOUNT ["NAME"]
- autosave PERCENT (e.g., 20 or 20%)
- delete money account AMOUNT | delete money savings AMOUNT | delete money all
- report [24h|week|month|year|5y|lifetime]
- theme THEME_NAME  (e.g., theme Dark)
- undo
- help`

const deleteUsage = `Usage:
- delete money account AMOUNT
- delete money savings AMOUNT
- delete money all`
