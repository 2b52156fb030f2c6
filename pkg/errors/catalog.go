package errors

import "strings"

// Message catalog keys.
const (
	MsgUndoNoTool      = "undo.no_tool"
	MsgRedoNoTool      = "redo.no_tool"
	MsgNothingToEdit   = "edit.empty"
	MsgNothingToExport = "export.empty"
)

// Supported languages.
const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

var catalog = map[string]map[string]string{
	LangEnglish: {
		MsgUndoNoTool:      "No drawing is active to undo!",
		MsgRedoNoTool:      "No drawing is active to redo!",
		MsgNothingToEdit:   "There are no drawings to edit!",
		MsgNothingToExport: "There are no drawings to export!",
	},
	LangArabic: {
		MsgUndoNoTool:      "مفيش رسم شغال حالياً للتراجع!",
		MsgRedoNoTool:      "مفيش رسم شغال حالياً لإعادة!",
		MsgNothingToEdit:   "لا يوجد رسومات للتعديل!",
		MsgNothingToExport: "لا يوجد رسومات للتصدير!",
	},
}

// Languages returns the languages that have a message catalog.
func Languages() []string {
	return []string{LangEnglish, LangArabic}
}

// lookup finds key in the catalog for lang. Region subtags ("ar-EG") fall
// back to the base language.
func lookup(lang, key string) (string, bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	msgs, ok := catalog[lang]
	if !ok {
		return "", false
	}
	msg, ok := msgs[key]
	return msg, ok
}
