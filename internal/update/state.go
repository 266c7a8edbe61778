package update

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// uiState is the part of the view that survives restarts.
type uiState struct {
	ExpandedTaskIDs  []string `json:"expanded_task_ids"`
	SelectedCategory string   `json:"selected_category,omitempty"`
	ShowArchived     bool     `json:"show_archived,omitempty"`
}

func (m Model) currentUIState() uiState {
	return uiState{
		ExpandedTaskIDs:  m.Tree.ExpandedIDs(),
		SelectedCategory: m.SelectedCategory,
		ShowArchived:     m.ShowArchived,
	}
}

func (m *Model) applyUIState(state uiState) {
	for _, id := range state.ExpandedTaskIDs {
		if id = strings.TrimSpace(id); id != "" {
			m.Tree.SetExpanded(id, true)
		}
	}
	m.SelectedCategory = strings.TrimSpace(state.SelectedCategory)
	m.ShowArchived = state.ShowArchived
}

// persistUIState writes the state file atomically. Failures are logged and
// otherwise ignored.
func (m Model) persistUIState() {
	if err := saveUIState(m.stateFilePath, m.currentUIState()); err != nil {
		m.logger.Warn("save state file", "path", m.stateFilePath, "err", err)
	}
}

func saveUIState(path string, state uiState) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func loadUIState(path string) (uiState, error) {
	var state uiState
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return state, nil
	}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return state, nil
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return uiState{}, err
	}
	return state, nil
}
