// Package authz holds role checks shared by middleware and handlers.
package authz

import "digiread/internal/models"

// Readers are the roles allowed to buy, read and review. Authors are readers too.
var Readers = []string{models.RoleUser, models.RoleAuthor}

func IsAuthor(role string) bool {
	return role == models.RoleAuthor
}
