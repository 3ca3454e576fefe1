package handlers

import (
	"fmt"
	"strconv"
	"strings"
)

// listCommand is a parsed /whitelist or /blacklist invocation.
type listCommand struct {
	verb   string
	userID int64
}

// parseListCommand parses command text like "/whitelist add 12345".
// The list verb defaults to "list" when no arguments are given.
func parseListCommand(text string) (listCommand, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return listCommand{verb: "list"}, nil
	}

	cmd := listCommand{verb: strings.ToLower(fields[1])}
	switch cmd.verb {
	case "list":
		return cmd, nil
	case "add", "remove":
		if len(fields) < 3 {
			return listCommand{}, fmt.Errorf("%s requires a user id", cmd.verb)
		}
		userID, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil || userID <= 0 {
			return listCommand{}, fmt.Errorf("invalid user id %q", fields[2])
		}
		cmd.userID = userID
		return cmd, nil
	default:
		return listCommand{}, fmt.Errorf("unknown subcommand %q, expected add, remove, or list", cmd.verb)
	}
}

// formatUserList renders a set of user ids for a reply message.
func formatUserList(title string, ids []int64) string {
	if len(ids) == 0 {
		return title + " is empty."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d):\n", title, len(ids))
	for _, id := range ids {
		fmt.Fprintf(&sb, "• %d\n", id)
	}
	return sb.String()
}
