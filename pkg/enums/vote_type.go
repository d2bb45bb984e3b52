package enums

import "fmt"

// VoteType is a user's reaction to a piece of content.
type VoteType string

const (
	VoteTypeUp   VoteType = "UpVote"
	VoteTypeDown VoteType = "DownVote"
)

var validVoteTypes = []VoteType{VoteTypeUp, VoteTypeDown}

func (v VoteType) String() string {
	return string(v)
}

func (v VoteType) IsValid() bool {
	for _, candidate := range validVoteTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVoteType converts raw input into a VoteType.
func ParseVoteType(value string) (VoteType, error) {
	for _, candidate := range validVoteTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vote type %q", value)
}
