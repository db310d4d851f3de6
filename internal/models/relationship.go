package models

// RelationshipState is the tagged state of a user pair. A missing row means
// the pair has no relationship at all.
type RelationshipState string

const (
	// RelationshipPending means RequesterID has asked the other party and the
	// request has not been answered yet.
	RelationshipPending RelationshipState = "pending"
	// RelationshipFriends means both parties confirmed the friendship.
	RelationshipFriends RelationshipState = "friends"
)

// Relationship stores the friend-graph state for one unordered user pair as a
// single row. To avoid duplicates and simplify queries, UserID1 is always less
// than UserID2. Keeping both the pending request and the friendship in one row
// makes every state transition a single conditional update, so the two sides
// of the graph can never disagree.
//
// The per-user friend / request_to_friend / request_to_me lists exposed to
// clients are projections over these rows:
//
//	friends(u)           = pairs with State == friends
//	request_to_friend(u) = pending pairs where RequesterID == u
//	request_to_me(u)     = pending pairs where RequesterID != u
type Relationship struct {
	BaseModel
	UserID1     uint              `gorm:"not null;uniqueIndex:idx_relationship_pair" json:"userId1"`
	UserID2     uint              `gorm:"not null;uniqueIndex:idx_relationship_pair" json:"userId2"`
	State       RelationshipState `gorm:"type:varchar(20);not null" json:"state"`
	RequesterID uint              `gorm:"not null;index" json:"requesterId"` // who sent the pending request
}

// TableName specifies the table name for the Relationship model.
func (Relationship) TableName() string {
	return "relationships"
}

// EnsureCanonicalOrder sets UserID1 to the smaller ID and UserID2 to the
// larger ID. This must be called before creating a Relationship record.
func (r *Relationship) EnsureCanonicalOrder() {
	if r.UserID1 > r.UserID2 {
		r.UserID1, r.UserID2 = r.UserID2, r.UserID1
	}
}

// OtherUser returns the pair member that is not userID.
func (r *Relationship) OtherUser(userID uint) uint {
	if r.UserID1 == userID {
		return r.UserID2
	}
	return r.UserID1
}

// CanonicalPair returns the two IDs in canonical order.
func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
