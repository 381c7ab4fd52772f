package domain

import "time"

// Account is a registered identity. DeviceToken is nil until the first
// successful login binds the account to a device.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	DeviceToken  *string
	CreatedAt    time.Time
}

// Image is metadata for one uploaded image. The bytes themselves live in the
// blob store under StorageKey; ownership never changes after creation.
type Image struct {
	ID         int64
	OwnerID    int64
	Filename   string
	MimeType   string
	StorageKey string
	SizeBytes  int64
	UploadedAt time.Time
}
