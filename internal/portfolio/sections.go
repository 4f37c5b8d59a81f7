package portfolio

// SectionID идентификатор раздела
type SectionID string

// Разделы портфолио
const (
	SectionHome    SectionID = "home"
	SectionAbout   SectionID = "about"
	SectionMusic   SectionID = "music"
	SectionContact SectionID = "contact"
)

// Section раздел навигации
type Section struct {
	ID    SectionID
	Label string
}

// Sections разделы в порядке навигации
var Sections = []Section{
	{ID: SectionHome, Label: "Главная"},
	{ID: SectionAbout, Label: "Обо мне"},
	{ID: SectionMusic, Label: "Музыка"},
	{ID: SectionContact, Label: "Контакты"},
}

// SectionIndex возвращает индекс раздела или -1
func SectionIndex(id SectionID) int {
	for i, s := range Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// NextSection возвращает следующий раздел по кругу
func NextSection(id SectionID) SectionID {
	i := SectionIndex(id)
	return Sections[(i+1)%len(Sections)].ID
}

// PrevSection возвращает предыдущий раздел по кругу
func PrevSection(id SectionID) SectionID {
	i := SectionIndex(id)
	if i <= 0 {
		return Sections[len(Sections)-1].ID
	}
	return Sections[i-1].ID
}
