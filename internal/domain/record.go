package domain

import (
	"crypto/rand"
	"time"
)

// ApplicationIDPrefix starts every readable application id.
const ApplicationIDPrefix = "EST-"

const idAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewApplicationID returns a readable id like EST-7KQ2MX. The alphabet
// skips easily confused characters (0/O, 1/I).
func NewApplicationID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	out := make([]byte, 6)
	for i, b := range buf {
		out[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return ApplicationIDPrefix + string(out)
}

// Application is one persisted submission. FormData keeps the raw form
// JSON; PDFKey points at the stored copy of the generated document in
// object storage (empty until generation finishes).
type Application struct {
	ID             string
	ApplicationID  string // readable id, EST-XXXXXX
	FormData       string
	ApplicantCount int
	BHKType        string
	PDFKey         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// User is an admin dashboard account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}
