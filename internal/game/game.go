package game

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/sunflower/internal/pose"
	"github.com/iburimskiy/sunflower/internal/render"
)

// Sound follows the sculpture once per tick.
type Sound interface {
	Follow(bloom, lightIntensity float64)
	TogglePause()
}

// Options are the optional collaborators of a Game.
type Options struct {
	Pointer *pose.PointerSource // fed from the cursor when set
	Sound   Sound
	Status  StatusFunc
	HUD     bool
}

// Game is the ebiten.Game of the sculpture: Update ticks the driver, Draw
// renders a frame and Layout resizes the viewport.
type Game struct {
	driver  *Driver
	surface *render.EbitenSurface
	opts    Options
	logger  *slog.Logger

	start   time.Time
	hud     bool
	stopped atomic.Bool
	fatal   error
}

// NewGame wraps d. surface must be the one d was built with.
func NewGame(d *Driver, surface *render.EbitenSurface, opts Options, logger *slog.Logger) *Game {
	return &Game{
		driver:  d,
		surface: surface,
		opts:    opts,
		logger:  logger.With("component", "game"),
		start:   time.Now(),
		hud:     opts.HUD,
	}
}

// Stop makes the next Update end the game. Safe from any goroutine.
func (g *Game) Stop() { g.stopped.Store(true) }

// Err is the fatal frame error that ended the game, if any.
func (g *Game) Err() error { return g.fatal }

func (g *Game) Update() error {
	if g.stopped.Load() || g.fatal != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.hud = !g.hud
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) && g.opts.Sound != nil {
		g.opts.Sound.TogglePause()
	}

	if g.opts.Pointer != nil {
		g.feedPointer()
	}

	g.driver.Tick(time.Since(g.start))
	if g.opts.Sound != nil {
		s := g.driver.State()
		g.opts.Sound.Follow(s.Bloom, g.driver.Light())
	}
	return nil
}

// feedPointer reports the cursor as a fingertip in [0,1]^2; off-window counts
// as no hand.
func (g *Game) feedPointer() {
	w, h := g.driver.Pixels()
	if w <= 0 || h <= 0 {
		return
	}
	cx, cy := ebiten.CursorPosition()
	inside := cx >= 0 && cy >= 0 && cx < w && cy < h
	g.opts.Pointer.Feed(float64(cx)/float64(w), float64(cy)/float64(h), inside)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.Bind(screen)
	if err := g.driver.Frame(g.surface); err != nil {
		g.fatal = err
		return
	}
	if !g.hud {
		return
	}
	status := Status{Level: -1}
	if g.opts.Status != nil {
		status = g.opts.Status()
	}
	ebitenutil.DebugPrintAt(screen, hudText(g.driver.State(), g.driver.Light(), g.driver.Stats(), status, time.Since(g.start)), 12, 12)
}

// Layout resizes synchronously and renders at device resolution.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	ratio := 1.0
	if m := ebiten.Monitor(); m != nil {
		ratio = m.DeviceScaleFactor()
	}
	g.driver.Resize(outsideWidth, outsideHeight, ratio)
	return g.driver.Pixels()
}
