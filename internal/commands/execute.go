package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Search   func(SearchArgs) (Result, error)
	Tag      func(TagArgs) (Result, error)
	Category func(CategoryArgs) (Result, error)
	NewCat   func(NameArgs) (Result, error)
	DelCat   func(NameArgs) (Result, error)
	Archive  func() (Result, error)
	Archived func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeSearch:
		if handlers.Search == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Search(*cmd.Search)
	case TypeTag:
		if handlers.Tag == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Tag(*cmd.Tag)
	case TypeCategory:
		if handlers.Category == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Category(*cmd.Category)
	case TypeNewCat:
		if handlers.NewCat == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.NewCat(*cmd.Name)
	case TypeDelCat:
		if handlers.DelCat == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.DelCat(*cmd.Name)
	case TypeArchive:
		if handlers.Archive == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Archive()
	case TypeArchived:
		if handlers.Archived == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Archived()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
