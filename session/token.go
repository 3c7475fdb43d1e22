// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/pinrail/pinrail-go/utils"
)

// UserIDFromToken extracts the subject claim from an API token. The parse is
// deliberately unverified: signature checking is the server's job, the client
// only needs the identity to derive its push topic and session scope.
func UserIDFromToken(token string) (string, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", utils.NewUnauthorizedError(errors.Wrap(err, "failed to parse API token"))
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", utils.NewUnauthorizedError("API token carries no subject")
	}
	return sub, nil
}
