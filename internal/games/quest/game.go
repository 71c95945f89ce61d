// Package quest implements the survey as a small platformer.
// The respondent walks and jumps under a row of numbered answer blocks;
// triggering a block answers the active scale question, and standing in the
// centre of the stage opens a text prompt for open questions.
package quest

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/quest/internal/config"
	"github.com/vovakirdan/quest/internal/core"
	"github.com/vovakirdan/quest/internal/registry"
	"github.com/vovakirdan/quest/internal/survey"
)

// Trigger selects which game event answers a scale question.
type Trigger int

const (
	// TriggerStrike answers when the avatar's head strikes a block from below.
	TriggerStrike Trigger = iota
	// TriggerLand answers when the avatar lands on a block from above.
	TriggerLand
	// TriggerClick answers when a block is clicked.
	TriggerClick
)

// ID returns the variant identifier registered for the trigger.
func (t Trigger) ID() string {
	switch t {
	case TriggerLand:
		return "quest_land"
	case TriggerClick:
		return "quest_click"
	default:
		return "quest"
	}
}

// Layout constants, in cells.
const (
	panelH   = 7
	blockH   = 3
	goombaW  = 2
	goombaH  = 1
	coinLife = 20
	shakeLen = 10
)

var (
	configPath    string
	questionsPath string

	// wallClock anchors simulated time so completion timestamps are real.
	wallClock = time.Now
)

// SetConfigPath sets the custom survey.yaml path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetQuestionsPath sets the custom questions.yaml path for loading.
func SetQuestionsPath(path string) {
	questionsPath = path
}

// CheckQuestions loads the questionnaire set with SetQuestionsPath. Callers run
// it before starting a game: a custom file that fails to load would otherwise
// be replaced by the built-in questionnaire.
func CheckQuestions() error {
	if questionsPath == "" {
		return nil
	}
	_, err := config.LoadQuestions(questionsPath)
	return err
}

// Game implements the survey platformer.
type Game struct {
	trigger Trigger

	// Fixed configuration; when unset Reset loads it from disk.
	fixedCfg       *config.SurveyConfig
	fixedQuestions survey.QuestionList

	cfg     config.SurveyConfig
	runtime core.RuntimeConfig
	session *survey.Session
	rng     *rand.Rand

	epoch   time.Time
	tick    int
	paused  bool
	locked  bool // Respondent already completed the survey elsewhere
	groundY int

	player   core.Box
	vy       float64
	grounded bool
	runDir   float64
	runTicks int
	walk     int

	goombas []goomba
	blocks  []block
	layout  int // Question index the blocks were laid out for
	support int // Block the avatar is standing on, -1 for none
	pending []pendingCommit
	coins   []coin

	zoneTicks   int
	dismissed   bool // Prompt was cancelled; reopen only after leaving the zone
	commitTicks int
	promptTicks int

	result      survey.Result
	resultReady bool
	party       celebration
}

type pendingCommit struct {
	ticket survey.Ticket
	due    int
}

// New creates a survey game that loads its configuration on Reset.
func New(trigger Trigger) *Game {
	return &Game{trigger: trigger, support: -1}
}

// NewWith creates a survey game with fixed configuration and questions.
func NewWith(trigger Trigger, cfg config.SurveyConfig, questions survey.QuestionList) *Game {
	return &Game{trigger: trigger, fixedCfg: &cfg, fixedQuestions: questions, support: -1}
}

// ID returns the unique identifier for this variant.
func (g *Game) ID() string {
	return g.trigger.ID()
}

// Title returns the display name for this variant.
func (g *Game) Title() string {
	switch g.trigger {
	case TriggerLand:
		return "Survey Quest (land on blocks)"
	case TriggerClick:
		return "Survey Quest (click blocks)"
	default:
		return "Survey Quest"
	}
}

// Reset loads configuration and starts the questionnaire from the top.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	g.cfg, g.session = g.load()
	g.rng = rand.New(rand.NewSource(runtime.Seed))
	g.epoch = wallClock()
	g.tick = 0
	g.paused = false
	g.groundY = runtime.ScreenH - g.cfg.Player.GroundOffset
	g.commitTicks = runtime.Ticks(g.cfg.Capture.CommitDelay())
	g.promptTicks = runtime.Ticks(g.cfg.Capture.PromptDelay())
	g.resultReady = false
	g.result = survey.Result{}

	g.restart()
}

func (g *Game) load() (config.SurveyConfig, *survey.Session) {
	cfg := config.DefaultSurveyConfig()
	questions := g.fixedQuestions
	if g.fixedCfg != nil {
		cfg = *g.fixedCfg
	} else {
		if loaded, err := config.LoadSurvey(configPath); err == nil {
			cfg = loaded
		}
		config.ApplyEnv(&cfg) //nolint:errcheck // invalid overrides keep the file values
	}
	if questions == nil {
		questions, _ = config.LoadQuestions(questionsPath)
	}

	opts := []survey.Option{
		survey.WithClock(g.now),
		survey.WithDebounce(cfg.Capture.Debounce()),
		survey.WithCompletion(g.complete),
	}
	session, err := survey.NewSession(questions, opts...)
	if err != nil {
		questions, _ = config.ParseQuestions(config.GetDefaultYAML("questions"))
		session, _ = survey.NewSession(questions, opts...)
	}
	return cfg, session
}

// restart puts the avatar back at the start of a fresh questionnaire.
func (g *Game) restart() {
	g.session.Reset()
	g.party = celebration{}
	g.pending = nil
	g.coins = nil
	g.zoneTicks = 0
	g.dismissed = false
	g.runTicks = 0
	g.respawn()
	g.spawnGoombas()
	g.layoutBlocks()
}

// now is the session clock: wall time at Reset plus simulated ticks.
func (g *Game) now() time.Time {
	return g.epoch.Add(time.Duration(g.tick) * g.runtime.TickDuration())
}

func (g *Game) complete(r survey.Result) {
	g.result = r
	g.resultReady = true
	g.pending = nil
	g.party.start(g.rng, g.runtime.ScreenW, g.runtime.ScreenH)
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.locked || g.session.IsComplete() {
		if !g.locked && in.Has(core.ActionRestart) {
			g.restart()
			return core.StepResult{State: g.State()}
		}
		g.stepCelebration()
		return core.StepResult{State: g.State()}
	}

	// The stage is frozen while the respondent types.
	if g.session.AwaitingInput() {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionBack) && g.session.GoBack() {
		g.pending = nil
		g.layoutBlocks()
	}

	g.stepPlayer(in)
	g.stepGoombas()
	if g.trigger == TriggerClick {
		g.handleClicks(in.Clicks)
	}
	g.stepEffects()
	g.commitDue()
	if g.layout != g.session.Index() {
		g.layoutBlocks()
	}
	g.stepPromptZone()

	return core.StepResult{State: g.State()}
}

// commitDue redeems selection tickets whose presentation delay has passed.
func (g *Game) commitDue() {
	kept := g.pending[:0]
	for _, p := range g.pending {
		if p.due > g.tick {
			kept = append(kept, p)
			continue
		}
		g.session.CommitAnswer(p.ticket) //nolint:errcheck // stale tickets are ignored by the session
		if g.session.IsComplete() {
			kept = kept[:0]
			break
		}
	}
	g.pending = kept
}

// stepPromptZone opens the text prompt once the avatar has stood in the
// centre zone long enough during a text question.
func (g *Game) stepPromptZone() {
	q, ok := g.session.Current()
	if !ok || q.Kind != survey.KindText {
		g.zoneTicks = 0
		return
	}
	if !g.inZone() {
		g.zoneTicks = 0
		g.dismissed = false
		return
	}
	if g.dismissed {
		return
	}
	g.zoneTicks++
	if g.zoneTicks >= g.promptTicks {
		if err := g.session.BeginTextCapture(); err == nil {
			g.zoneTicks = 0
		}
	}
}

func (g *Game) inZone() bool {
	if !g.grounded || g.support >= 0 {
		return false
	}
	w := float64(g.runtime.ScreenW)
	cx := g.player.CenterX()
	return cx >= w*g.cfg.Zone.Left && cx <= w*g.cfg.Zone.Right
}

// Prompt returns the active question text while a text answer is awaited.
func (g *Game) Prompt() (string, bool) {
	if !g.session.AwaitingInput() {
		return "", false
	}
	q, ok := g.session.Current()
	if !ok {
		return "", false
	}
	return q.Text, true
}

// SubmitText answers the open prompt.
func (g *Game) SubmitText(text string) error {
	return g.session.SubmitTextAnswer(text)
}

// CancelPrompt closes the prompt; it reopens after the avatar leaves and
// re-enters the zone.
func (g *Game) CancelPrompt() {
	if g.session.AwaitingInput() {
		g.session.CancelTextCapture()
		g.dismissed = true
		g.zoneTicks = 0
	}
}

// TakeResult returns the completed questionnaire once.
func (g *Game) TakeResult() (survey.Result, bool) {
	if !g.resultReady {
		return survey.Result{}, false
	}
	g.resultReady = false
	return g.result, true
}

// ShowAlreadyCompleted replaces the questionnaire with the closing screen.
func (g *Game) ShowAlreadyCompleted() {
	if g.locked {
		return
	}
	g.locked = true
	g.pending = nil
	g.blocks = nil
	g.party.start(g.rng, g.runtime.ScreenW, g.runtime.ScreenH)
}

// Answers returns the answers recorded so far.
func (g *Game) Answers() []survey.Answer {
	return g.session.Answers()
}

// State returns the current progress.
func (g *Game) State() core.GameState {
	return core.GameState{
		Answered: len(g.session.Answers()),
		Total:    g.session.Len(),
		Complete: g.locked || g.session.IsComplete(),
		Paused:   g.paused,
		Pending:  len(g.pending) > 0,
	}
}

// Register the variants with the registry
func init() {
	for _, t := range []Trigger{TriggerStrike, TriggerLand, TriggerClick} {
		registry.Register(t.ID(), func() registry.Game {
			return New(t)
		})
	}
}
