// Package registry provides a global registry for survey game variants.
// Variants register themselves in init() functions, allowing the platform
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/quest/internal/core"
	"github.com/vovakirdan/quest/internal/survey"
)

// Game is the interface every survey game variant implements.
// Games contain pure logic with no external dependencies (especially no Bubble Tea).
// The platform handles input mapping, timing, rendering, the text prompt
// widget and submission of completed answers.
type Game interface {
	// ID returns a unique identifier for this variant (e.g., "quest", "quest_click").
	// Used for CLI commands and stored with each response.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset initializes the game and starts a fresh questionnaire.
	// The RuntimeConfig provides screen dimensions and RNG seed.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current game state into the provided screen buffer.
	Render(dst *core.Screen)

	// State returns progress through the questionnaire.
	State() core.GameState

	// Prompt returns the question to ask when the game waits for typed text.
	Prompt() (string, bool)

	// SubmitText answers the open prompt. Blank text keeps the prompt open.
	SubmitText(text string) error

	// CancelPrompt closes the prompt without answering.
	CancelPrompt()

	// TakeResult returns the completed questionnaire once per completion.
	TakeResult() (survey.Result, bool)

	// ShowAlreadyCompleted switches the game to the closing screen for a
	// respondent who has already taken the survey.
	ShowAlreadyCompleted()
}

// GameInfo contains metadata about a registered variant.
type GameInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a game.
type Factory func() Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a game factory to the registry.
// Typically called from a game's init() function.
// Panics if a game with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f

	// Get title by creating a temporary instance
	g := f()
	titles[id] = g.Title()
}

// List returns information about all registered variants, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new game by its ID.
// Returns an error if the ID is not registered.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}

	return f(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
