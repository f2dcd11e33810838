package backend

import (
	"sort"

	"github.com/dshills/keytap/internal/key"
)

// usLayout maps scan codes to key names on a US layout, primary name
// first. The codes follow the Linux input-event numbering, which the
// fake backend and the evdev backend share; the hook backend remaps
// through the OS.
var usLayout = map[key.Code][]string{
	1:  {"esc", "escape"},
	2:  {"1", "!"},
	3:  {"2", "@"},
	4:  {"3", "#"},
	5:  {"4", "$"},
	6:  {"5", "%"},
	7:  {"6", "^"},
	8:  {"7", "&"},
	9:  {"8", "*"},
	10: {"9", "("},
	11: {"0", ")"},
	12: {"-", "_"},
	13: {"=", "+"},
	14: {"backspace"},
	15: {"tab"},
	16: {"q"},
	17: {"w"},
	18: {"e"},
	19: {"r"},
	20: {"t"},
	21: {"y"},
	22: {"u"},
	23: {"i"},
	24: {"o"},
	25: {"p"},
	26: {"[", "{"},
	27: {"]", "}"},
	28: {"enter"},
	29: {"ctrl", "left ctrl"},
	30: {"a"},
	31: {"s"},
	32: {"d"},
	33: {"f"},
	34: {"g"},
	35: {"h"},
	36: {"j"},
	37: {"k"},
	38: {"l"},
	39: {";", ":"},
	40: {"'", "\""},
	41: {"`", "~"},
	42: {"shift", "left shift"},
	43: {"\\", "|"},
	44: {"z"},
	45: {"x"},
	46: {"c"},
	47: {"v"},
	48: {"b"},
	49: {"n"},
	50: {"m"},
	51: {",", "<"},
	52: {".", ">"},
	53: {"/", "?"},
	54: {"right shift", "shift"},
	55: {"*"},
	56: {"alt", "left alt"},
	57: {"space"},
	58: {"caps lock"},
	59: {"f1"},
	60: {"f2"},
	61: {"f3"},
	62: {"f4"},
	63: {"f5"},
	64: {"f6"},
	65: {"f7"},
	66: {"f8"},
	67: {"f9"},
	68: {"f10"},
	87: {"f11"},
	88: {"f12"},
	96: {"enter"},
	97: {"right ctrl", "ctrl"},
	98: {"/"},
	100: {"right alt", "alt", "alt gr"},
	102: {"home"},
	103: {"up"},
	104: {"page up"},
	105: {"left"},
	106: {"right"},
	107: {"end"},
	108: {"down"},
	109: {"page down"},
	110: {"insert"},
	111: {"delete"},
	119: {"pause"},
	125: {"windows", "left windows"},
	126: {"right windows", "windows"},
	127: {"menu"},

	71: {"7"},
	72: {"8"},
	73: {"9"},
	74: {"-"},
	75: {"4"},
	76: {"5"},
	77: {"6"},
	78: {"+"},
	79: {"1"},
	80: {"2"},
	81: {"3"},
	82: {"0"},
	83: {"."},
}

// keypadCodes marks codes on the numeric keypad.
var keypadCodes = map[key.Code]bool{
	55: true, 71: true, 72: true, 73: true, 74: true, 75: true,
	76: true, 77: true, 78: true, 79: true, 80: true, 81: true,
	82: true, 83: true, 96: true, 98: true,
}

// nameToCodes is usLayout inverted, preferring non-keypad codes first.
var nameToCodes = buildNameIndex()

func buildNameIndex() map[string][]key.Code {
	codes := make([]key.Code, 0, len(usLayout))
	for code := range usLayout {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	index := make(map[string][]key.Code)
	add := func(pad bool) {
		for _, code := range codes {
			if keypadCodes[code] != pad {
				continue
			}
			for _, name := range usLayout[code] {
				index[name] = append(index[name], code)
			}
		}
	}
	add(false)
	add(true)
	return index
}

// layoutCodes resolves a canonical name against the US table.
func layoutCodes(name string) ([]key.Code, bool) {
	codes, ok := nameToCodes[key.Normalize(name)]
	return codes, ok
}

// layoutNames decodes a code against the US table, falling back to
// "unknown".
func layoutNames(code key.Code) ([]string, bool) {
	if names, ok := usLayout[code]; ok {
		return names, keypadCodes[code]
	}
	return []string{"unknown"}, false
}
