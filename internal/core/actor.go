// AngelaMos | 2026
// actor.go

package core

const (
	ActorGuest   = "guest"
	ActorUser    = "user"
	ActorPremium = "premium"
)

// Actor is the caller a request acts on behalf of. Exactly one of UserID
// and GuestToken identifies it; a guest may not have a token yet.
type Actor struct {
	UserID     string
	GuestToken string
	Premium    bool
}

func GuestActor(token string) Actor {
	return Actor{GuestToken: token}
}

func UserActor(userID string, premium bool) Actor {
	return Actor{UserID: userID, Premium: premium}
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != ""
}

func (a Actor) IsGuest() bool {
	return a.UserID == ""
}

func (a Actor) Kind() string {
	switch {
	case a.IsGuest():
		return ActorGuest
	case a.Premium:
		return ActorPremium
	default:
		return ActorUser
	}
}
