package models

import "strings"

// CommandType enumerates the supervisor commands accepted over WhatsApp.
type CommandType string

const (
	CommandDaily   CommandType = "daily"
	CommandStatus  CommandType = "status"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed supervisor instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages. The
// leading slash is optional.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.ToLower(message))
	if len(tokens) == 0 {
		return cmd
	}

	switch head := strings.TrimPrefix(tokens[0], "/"); head {
	case string(CommandDaily):
		cmd.Type = CommandDaily
	case string(CommandStatus):
		cmd.Type = CommandStatus
	case string(CommandHelp), "start":
		cmd.Type = CommandHelp
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
