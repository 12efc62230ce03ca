package models

import "time"

const (
	// PapaPickCount - сколько участников выбирается в Game 1.
	PapaPickCount = 5
	// LineSlotCount - число упорядоченных слотов Game 2.
	LineSlotCount = 3
	// ApplicantMaxLength - максимум символов в имени игрока.
	ApplicantMaxLength = 255
)

// Entry - одна ставка: имя игрока, выбор для Game 1 и Game 2.
type Entry struct {
	ID        int64     `json:"id" db:"id"`
	Applicant string    `json:"applicant" db:"applicant"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Game 1, порядок не важен (отдаём по возрастанию id).
	PapaMembers []Member `json:"papa_members" db:"-"`
	// Game 2, индекс = slot-1. nil, если строки для слота нет.
	LineMembers [LineSlotCount]*Member `json:"line_members" db:"-"`
}

// MemberAtSlot возвращает участника Game 2 для слота 1..3 или nil, если слот
// вне диапазона или строки для него нет.
func (e *Entry) MemberAtSlot(slot int) *Member {
	if e == nil || slot < 1 || slot > LineSlotCount {
		return nil
	}
	return e.LineMembers[slot-1]
}

// PapaMemberIDs возвращает id участников Game 1 в сохранённом порядке.
func (e *Entry) PapaMemberIDs() []int64 {
	ids := make([]int64, 0, len(e.PapaMembers))
	for _, m := range e.PapaMembers {
		ids = append(ids, m.ID)
	}
	return ids
}

// LineMemberIDs возвращает id участников Game 2 по слотам; 0 - слот пуст.
func (e *Entry) LineMemberIDs() [LineSlotCount]int64 {
	var ids [LineSlotCount]int64
	for i, m := range e.LineMembers {
		if m != nil {
			ids[i] = m.ID
		}
	}
	return ids
}

// EntryDraft - проверенная заявка, готовая к записи.
type EntryDraft struct {
	Applicant     string
	PapaMemberIDs []int64 // без повторов, по возрастанию
	LineMemberIDs [LineSlotCount]int64
}
