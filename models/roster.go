package models

// Member - участник ростера. Создаётся вне сервиса и здесь только читается.
type Member struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Roster - участники по id.
type Roster map[int64]Member

func NewRoster(members []Member) Roster {
	r := make(Roster, len(members))
	for _, m := range members {
		r[m.ID] = m
	}
	return r
}

func (r Roster) Has(id int64) bool {
	_, ok := r[id]
	return ok
}
