package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// VideoRoomProvisioner creates the video room for an online session at
// confirmation time.
type VideoRoomProvisioner interface {
	CreateRoom(ctx context.Context, sessionID uuid.UUID) (string, error)
}

const defaultVideoRoomBase = "https://meet.jit.si"

// JitsiRoomProvisioner derives a per-session room URL on a Jitsi
// deployment. Room names are unguessable because they embed the
// session id.
type JitsiRoomProvisioner struct {
	baseURL string
}

func NewJitsiRoomProvisioner(baseURL string) *JitsiRoomProvisioner {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultVideoRoomBase
	}
	return &JitsiRoomProvisioner{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *JitsiRoomProvisioner) CreateRoom(_ context.Context, sessionID uuid.UUID) (string, error) {
	return fmt.Sprintf("%s/session-%s", p.baseURL, sessionID), nil
}
