package service

import "github.com/lalith-99/happythoughts/internal/models"

// CanDelete is the ownership gate. Anonymous messages are undeletable for
// everyone; authored ones only by their author.
func CanDelete(msg *models.Message, requester *models.User) error {
	if requester == nil {
		return ErrAuthRequired
	}
	if msg.IsAnonymous() {
		return ErrForbidden
	}
	if !msg.IsAuthoredBy(requester.ID) {
		return ErrForbidden
	}
	return nil
}
