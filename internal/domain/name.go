// Package domain contains entity without logic, just meta-data
package domain

import "fmt"

// AnonymousName stands in for clients that never set a display name.
const AnonymousName DisplayName = "Anonymous"

type DisplayName string

// JoinNotice is the human-readable text sent to the room when name joins.
func JoinNotice(name DisplayName) string {
	return fmt.Sprintf("%s 님이 입장하셨습니다.", name)
}

// LeaveNotice is the human-readable text sent to the room when name leaves.
func LeaveNotice(name DisplayName) string {
	return fmt.Sprintf("%s 님이 퇴장하셨습니다.", name)
}
