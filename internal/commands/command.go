package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeSearch   Type = "search"
	TypeTag      Type = "tag"
	TypeCategory Type = "category"
	TypeNewCat   Type = "newcat"
	TypeDelCat   Type = "delcat"
	TypeArchive  Type = "archive"
	TypeArchived Type = "archived"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
	ErrCodeNoMatch         ErrorCode = "no_match"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Line string
}

type SearchArgs struct {
	Query string
}

type TagArgs struct {
	Tag string
}

// CategoryArgs selects a category by name. All clears the selection.
type CategoryArgs struct {
	Name string
	All  bool
}

type NameArgs struct {
	Name string
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Search   *SearchArgs
	Tag      *TagArgs
	Category *CategoryArgs
	Name     *NameArgs
}

// Parse reads one palette line. A leading ':' or '/' is ignored.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimLeft(raw, ":/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	head, rest, _ := strings.Cut(raw, " ")
	head = strings.ToLower(head)
	rest = strings.TrimSpace(rest)

	switch Type(head) {
	case TypeAdd:
		if rest == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a task line"}
		}
		return Command{Type: TypeAdd, Raw: input, Add: &AddArgs{Line: rest}}, nil
	case TypeSearch:
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Query: rest}}, nil
	case TypeTag:
		return parseTag(input, rest)
	case TypeCategory:
		return parseCategory(input, rest)
	case TypeNewCat, TypeDelCat:
		if rest == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a name", head)}
		}
		return Command{Type: Type(head), Raw: input, Name: &NameArgs{Name: rest}}, nil
	case TypeArchive, TypeArchived:
		return Command{Type: Type(head), Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseTag(raw, rest string) (Command, error) {
	tag := strings.TrimPrefix(strings.TrimSpace(rest), "#")
	if tag == "" || strings.ContainsAny(tag, " \t") {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "tag requires a single #tag"}
	}
	return Command{Type: TypeTag, Raw: raw, Tag: &TagArgs{Tag: tag}}, nil
}

func parseCategory(raw, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "category requires a name or 'all'"}
	}
	if strings.EqualFold(rest, "all") {
		return Command{Type: TypeCategory, Raw: raw, Category: &CategoryArgs{All: true}}, nil
	}
	return Command{Type: TypeCategory, Raw: raw, Category: &CategoryArgs{Name: rest}}, nil
}
