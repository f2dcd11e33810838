package key

import "strings"

// synonyms maps free-form key names (already lowercased, underscores
// converted to spaces) to their canonical form. Unmapped names pass
// through Normalize unchanged.
var synonyms = map[string]string{
	// Modifiers
	"control":       "ctrl",
	"left control":  "left ctrl",
	"right control": "right ctrl",
	"lctrl":         "left ctrl",
	"rctrl":         "right ctrl",
	"option":        "alt",
	"lalt":          "left alt",
	"ralt":          "right alt",
	"altgr":         "alt gr",
	"lshift":        "left shift",
	"rshift":        "right shift",
	"win":           "windows",
	"super":         "windows",
	"meta":          "windows",
	"command":       "windows",
	"cmd":           "windows",

	// Whitespace and editing
	"return":    "enter",
	"del":       "delete",
	"ins":       "insert",
	"bs":        "backspace",
	"spacebar":  "space",
	" ":         "space",
	"escape":    "esc",
	"\t":        "tab",
	"\n":        "enter",
	"app":       "menu",
	"apps":      "menu",
	"context":   "menu",
	"prtscn":    "print screen",
	"prt scrn":  "print screen",
	"prnt scrn": "print screen",

	// Navigation
	"up arrow":    "up",
	"down arrow":  "down",
	"left arrow":  "left",
	"right arrow": "right",
	"arrow up":    "up",
	"arrow down":  "down",
	"arrow left":  "left",
	"arrow right": "right",
	"pgup":        "page up",
	"pgdn":        "page down",
	"pgdown":      "page down",
	"next":        "page down",
	"prior":       "page up",

	// Keypad
	"numpad 0":      "0",
	"numpad 1":      "1",
	"numpad 2":      "2",
	"numpad 3":      "3",
	"numpad 4":      "4",
	"numpad 5":      "5",
	"numpad 6":      "6",
	"numpad 7":      "7",
	"numpad 8":      "8",
	"numpad 9":      "9",
	"numpad plus":   "+",
	"numpad minus":  "-",
	"numpad times":  "*",
	"numpad divide": "/",
	"numpad dot":    ".",
	"numpad enter":  "enter",
	"num lock":      "num lock",

	// Locale punctuation names
	"exclamation":      "!",
	"exclamation mark": "!",
	"at":               "@",
	"hash":             "#",
	"number sign":      "#",
	"dollar":           "$",
	"dollar sign":      "$",
	"percent":          "%",
	"caret":            "^",
	"ampersand":        "&",
	"asterisk":         "*",
	"star":             "*",
	"plus":             "+",
	"plus sign":        "+",
	"minus":            "-",
	"hyphen":           "-",
	"dash":             "-",
	"equal":            "=",
	"equals":           "=",
	"underscore":       "_",
	"comma":            ",",
	"period":           ".",
	"dot":              ".",
	"slash":            "/",
	"forward slash":    "/",
	"backslash":        "\\",
	"back slash":       "\\",
	"colon":            ":",
	"semicolon":        ";",
	"apostrophe":       "'",
	"quote":            "'",
	"double quote":     "\"",
	"backtick":         "`",
	"grave":            "`",
	"tilde":            "~",
	"question":         "?",
	"question mark":    "?",
	"pipe":             "|",
	"less than":        "<",
	"greater than":     ">",
	"left bracket":     "[",
	"right bracket":    "]",
	"left brace":       "{",
	"right brace":      "}",
	"left paren":       "(",
	"right paren":      ")",

	// Media and misc virtual keys
	"volume mute": "mute",
	"volume up":   "volume up",
	"volume down": "volume down",
	"media play":  "play/pause media",
	"play pause":  "play/pause media",
}

// modifierNames is the set of canonical modifier names. Sided variants
// ("left shift") normalize to their base name via BaseModifier.
var modifierNames = map[string]bool{
	"ctrl":    true,
	"shift":   true,
	"alt":     true,
	"alt gr":  true,
	"windows": true,
}

// Normalize maps a free-form key name to its canonical lowercase form.
// Underscores become spaces, except when the name is the literal "_"
// key itself. Normalize is total and idempotent; unmapped names pass
// through unchanged.
func Normalize(name string) string {
	if name != "_" {
		name = strings.ReplaceAll(name, "_", " ")
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return name
	}
	if canonical, ok := synonyms[name]; ok {
		return canonical
	}
	return name
}

// IsModifier reports whether the canonical name is a modifier key,
// including sided variants like "left shift".
func IsModifier(name string) bool {
	return modifierNames[BaseModifier(name)]
}

// BaseModifier strips a "left "/"right " side prefix from a modifier
// name. Non-modifier names are returned unchanged.
func BaseModifier(name string) string {
	base := strings.TrimPrefix(strings.TrimPrefix(name, "left "), "right ")
	if modifierNames[base] {
		return base
	}
	return name
}
