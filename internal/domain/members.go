package domain

import (
	"golang.org/x/exp/slices"
)

type Member struct {
	ConnID   string `json:"-"`
	Username string `json:"username"`
}

// Members keeps members in join order. Removal never reorders the survivors.
type Members struct {
	list []Member
}

func NewMembers() *Members {
	return &Members{
		list: make([]Member, 0),
	}
}

func (m Members) Length() int {
	return len(m.list)
}

func (m Members) index(connID string) int {
	return slices.IndexFunc(m.list, func(member Member) bool {
		return member.ConnID == connID
	})
}

func (m Members) Has(connID string) bool {
	return m.index(connID) >= 0
}

// First returns the earliest joined member still present.
func (m Members) First() (Member, bool) {
	if len(m.list) == 0 {
		return Member{}, false
	}

	return m.list[0], true
}

func (m *Members) Add(member Member) bool {
	if m.Has(member.ConnID) {
		return false
	}

	m.list = append(m.list, member)
	return true
}

func (m *Members) RemoveByID(connID string) (Member, bool) {
	index := m.index(connID)
	if index < 0 {
		return Member{}, false
	}

	member := m.list[index]
	m.list = slices.Delete(m.list, index, index+1)
	return member, true
}

func (m Members) IDs() []string {
	ids := make([]string, 0, len(m.list))
	for _, member := range m.list {
		ids = append(ids, member.ConnID)
	}

	return ids
}

func (m Members) IDsExcept(connID string) []string {
	ids := make([]string, 0, len(m.list))
	for _, member := range m.list {
		if member.ConnID != connID {
			ids = append(ids, member.ConnID)
		}
	}

	return ids
}
