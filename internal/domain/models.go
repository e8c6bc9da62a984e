package domain

import "time"

// Group is the top-level classification a section belongs to.
type Group string

const (
	GroupBeing Group = "being"
	GroupDoing Group = "doing"
)

// Valid reports whether g is one of the known groups.
func (g Group) Valid() bool {
	return g == GroupBeing || g == GroupDoing
}

// ScaleLabel is one point on the shared Likert scale.
type ScaleLabel struct {
	Value   int    `json:"value"`
	LabelEN string `json:"label_en"`
	LabelZH string `json:"label_zh"`
}

// Item is a single Likert-scale statement. Items are immutable once loaded.
type Item struct {
	ID         string `json:"id"`
	SectionID  string `json:"section_id"`
	OrderIndex int    `json:"order_index"`
	TextEN     string `json:"text_en"`
	TextZH     string `json:"text_zh"`
}

// Section groups the items of one category.
type Section struct {
	ID         string `json:"id"`
	Group      Group  `json:"group_id"`
	OrderIndex int    `json:"order_index"`
	TitleEN    string `json:"title_en"`
	TitleZH    string `json:"title_zh"`
	Items      []Item `json:"items"`
}

// SectionMeta is the item-less view of a section used by reports.
type SectionMeta struct {
	ID      string `json:"id"`
	Group   Group  `json:"group_id"`
	TitleEN string `json:"title_en"`
	TitleZH string `json:"title_zh"`
}

// Bank is the static bilingual question bank.
type Bank struct {
	ID       string       `json:"id"`
	NameEN   string       `json:"name_en"`
	NameZH   string       `json:"name_zh"`
	Scale    []ScaleLabel `json:"scale"`
	Sections []Section    `json:"sections"`
}

// Items flattens every section's items in section order, stamping the owning section id.
func (b Bank) Items() []Item {
	items := make([]Item, 0, b.ItemCount())
	for _, section := range b.Sections {
		for _, item := range section.Items {
			item.SectionID = section.ID
			items = append(items, item)
		}
	}
	return items
}

// ItemCount is the total number of items across all sections.
func (b Bank) ItemCount() int {
	n := 0
	for _, section := range b.Sections {
		n += len(section.Items)
	}
	return n
}

// SectionMetadata lists the sections without their items.
func (b Bank) SectionMetadata() []SectionMeta {
	meta := make([]SectionMeta, 0, len(b.Sections))
	for _, section := range b.Sections {
		meta = append(meta, SectionMeta{
			ID:      section.ID,
			Group:   section.Group,
			TitleEN: section.TitleEN,
			TitleZH: section.TitleZH,
		})
	}
	return meta
}

// ValidScaleValue reports whether v is a point on the bank's scale.
func (b Bank) ValidScaleValue(v int) bool {
	for _, label := range b.Scale {
		if label.Value == v {
			return true
		}
	}
	return false
}

// AnswerMap maps item id to the selected scale value.
type AnswerMap map[string]int

// Clone returns an independent copy of the map.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SectionScore is the folded (total, count) of a section and its mean.
type SectionScore struct {
	Total   int     `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// Result is one completed attempt as handed to persistence.
type Result struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id,omitempty"`
	Answers     AnswerMap          `json:"answers"`
	Scores      map[string]float64 `json:"scores"`
	CompletedAt time.Time          `json:"completed_at"`
	CreatedAt   time.Time          `json:"created_at"`
}

// User is an account known to the auth collaborator.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
}

// Profile is the user-editable profile row.
type Profile struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserStats summarizes a user's assessment activity.
type UserStats struct {
	Email           string     `json:"email"`
	FullName        string     `json:"full_name"`
	MemberSince     time.Time  `json:"member_since"`
	AssessmentCount int        `json:"assessment_count"`
	LastAssessment  *time.Time `json:"last_assessment"`
}
