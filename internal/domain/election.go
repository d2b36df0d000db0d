package domain

// Join adds the member and makes it leader if the room has none.
// It reports whether connID is the leader afterwards.
func (r *Room) Join(connID, username string) bool {
	r.Members.Add(Member{
		ConnID:   connID,
		Username: username,
	})

	if !r.HasLeader() {
		r.Leader = connID
	}

	return r.IsLeader(connID)
}

// Leave removes the member. When the leader leaves, leadership passes to the
// earliest remaining joiner, or to nobody if the room is now empty.
// successor is empty unless a new leader was chosen by this call.
func (r *Room) Leave(connID string) (successor string, removed bool) {
	if _, removed = r.Members.RemoveByID(connID); !removed {
		return "", false
	}

	if r.Leader != connID {
		return "", true
	}

	r.Leader = ""
	if first, ok := r.Members.First(); ok {
		r.Leader = first.ConnID
		return first.ConnID, true
	}

	return "", true
}
