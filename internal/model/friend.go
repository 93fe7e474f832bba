package model

import (
	"time"

	"github.com/google/uuid"
)

// Friend is a one-directional link granting read access to another user's subjects.
type Friend struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	FriendID   uuid.UUID `json:"friend_id"`
	FriendName string    `json:"friend_name"`
	FriendCode string    `json:"friend_code"`
	AddedAt    time.Time `json:"added_at"`
}

// AddFriendRequest adds a friend by their friend code.
type AddFriendRequest struct {
	FriendCode string `json:"friend_code" binding:"required,friendcode"`
}

// RenameFriendRequest changes the cached display name of a friend.
type RenameFriendRequest struct {
	FriendName string `json:"friend_name" binding:"required,notblank,max=100"`
}
