package query

// Key identifies one cached query. Keys are stable for the life of the
// process; every consumer of the same data reads the same entry.
type Key string

const (
	KeyAuthUser           Key = "authUser"
	KeyFriends            Key = "friends"
	KeyRecommendedUsers   Key = "users"
	KeyOutgoingFriendReqs Key = "outgoingFriendReqs"
	KeyFriendRequests     Key = "friendRequests"
)

// Invalidator is the only way consumers may change cached data: they mark a
// key stale and the store refetches it.
type Invalidator interface {
	Invalidate(key Key)
}
