package metadata

import "strings"

// localizedPairs maps the English terms this resolver uses internally
// to the localised terms the server embeds in moduleIdString values
// (and vice versa), so PathByModuleIDString can match either form.
var localizedPairs = [][2]string{
	{"Document", "Документ"},
	{"Catalog", "Справочник"},
	{"DataProcessor", "Обработка"},
	{"Report", "Отчет"},
	{"InformationRegister", "РегистрСведений"},
	{"CommonModule", "ОбщийМодуль"},
	{"ObjectModule", "МодульОбъекта"},
	{"ManagerModule", "МодульМенеджера"},
	{"FormModule", "МодульФормы"},
	{"CommandModule", "МодульКоманды"},
	{"Form", "Форма"},
	{"Command", "Команда"},
}

// foldModuleIDString normalizes a moduleIdString for fuzzy comparison:
// case-folded, with every known localised term rewritten to its
// canonical English form so "Документ.Заказ.МодульОбъекта" and a
// differently-cased Latin equivalent compare equal. Segment order is
// not normalized.
func foldModuleIDString(s string) string {
	out := s
	for _, pair := range localizedPairs {
		out = strings.ReplaceAll(out, pair[1], pair[0])
	}
	return strings.ToLower(out)
}
