package enums

import (
	"fmt"
	"strings"
)

type SwipeAction string

const (
	SwipeActionLike    SwipeAction = "LIKE"
	SwipeActionDislike SwipeAction = "DISLIKE"
)

func ParseSwipeAction(value string) (SwipeAction, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(SwipeActionLike):
		return SwipeActionLike, nil
	case string(SwipeActionDislike):
		return SwipeActionDislike, nil
	default:
		return "", fmt.Errorf("unknown swipe action %q", value)
	}
}

func (a SwipeAction) Valid() bool {
	return a == SwipeActionLike || a == SwipeActionDislike
}
