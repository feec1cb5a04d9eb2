package enums

import (
	"fmt"
	"strings"
)

type PostKind string

const (
	PostKindUpdate   PostKind = "UPDATE"
	PostKindJobOffer PostKind = "JOB_OFFER"
)

func ParsePostKind(value string) (PostKind, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(PostKindUpdate):
		return PostKindUpdate, nil
	case string(PostKindJobOffer):
		return PostKindJobOffer, nil
	default:
		return "", fmt.Errorf("unknown post kind %q", value)
	}
}

func (k PostKind) Valid() bool {
	return k == PostKindUpdate || k == PostKindJobOffer
}
