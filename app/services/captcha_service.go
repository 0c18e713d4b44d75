package services

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/amirphl/personnel-directory/utils"
	"github.com/google/uuid"
	"github.com/wenlng/go-captcha/v2/rotate"
)

// ErrCaptchaGenerate is returned when the rotate captcha could not be rendered
var ErrCaptchaGenerate = errors.New("failed to generate captcha")

// CaptchaService gates admin login behind a rotate captcha (github.com/wenlng/go-captcha).
//
// The client renders the master and thumb images, lets the user rotate the thumb,
// and submits the angle with the challenge ID. A challenge is consumed by its first
// verification, successful or not.
type CaptchaService interface {
	GenerateRotate(ctx context.Context) (*RotateChallenge, error)
	VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool
	Close()
}

type RotateChallenge struct {
	ID                string
	MasterImageBase64 string
	ThumbImageBase64  string
	ExpiresAt         time.Time
}

type captchaServiceImpl struct {
	rotator rotate.Captcha
	store   *challengeStore
	padding int // tolerance in degrees
}

// NewCaptchaServiceRotate builds a rotate captcha service.
// ttl bounds how long a challenge stays valid, padding is the accepted angle error in
// degrees and imgSizePx the square image size (220 when not positive).
func NewCaptchaServiceRotate(ttl time.Duration, padding int, imgSizePx int, now utils.Clock) (CaptchaService, error) {
	if imgSizePx <= 0 {
		imgSizePx = 220
	}
	if now == nil {
		now = utils.UTCNow
	}

	builder := rotate.NewBuilder(
		rotate.WithImageSquareSize(imgSizePx),
	)
	builder.SetResources(
		rotate.WithImages(generateRotateBackgrounds(3, imgSizePx)),
	)

	return &captchaServiceImpl{
		rotator: builder.Make(),
		store:   newChallengeStore(ttl, now),
		padding: padding,
	}, nil
}

func (s *captchaServiceImpl) GenerateRotate(ctx context.Context) (*RotateChallenge, error) {
	captData, err := s.rotator.Generate()
	if err != nil {
		return nil, errors.Join(ErrCaptchaGenerate, err)
	}

	block := captData.GetData()
	if block == nil {
		return nil, ErrCaptchaGenerate
	}

	masterB64, err := captData.GetMasterImage().ToBase64()
	if err != nil {
		return nil, errors.Join(ErrCaptchaGenerate, err)
	}
	thumbB64, err := captData.GetThumbImage().ToBase64()
	if err != nil {
		return nil, errors.Join(ErrCaptchaGenerate, err)
	}

	id := uuid.NewString()
	expiresAt := s.store.put(id, block.Angle)

	return &RotateChallenge{
		ID:                id,
		MasterImageBase64: masterB64,
		ThumbImageBase64:  thumbB64,
		ExpiresAt:         expiresAt,
	}, nil
}

func (s *captchaServiceImpl) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	target, ok := s.store.take(challengeID)
	if !ok {
		return false
	}
	return rotate.Validate(int(math.Round(userAngle)), target, s.padding)
}

// Close stops the cleanup goroutine
func (s *captchaServiceImpl) Close() {
	s.store.close()
}

type challenge struct {
	targetAngle int
	expiresAt   time.Time
}

// challengeStore holds pending challenges in memory until they expire or are taken
type challengeStore struct {
	mu   sync.Mutex
	m    map[string]challenge
	ttl  time.Duration
	now  utils.Clock
	stop chan struct{}
	once sync.Once
}

func newChallengeStore(ttl time.Duration, now utils.Clock) *challengeStore {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	s := &challengeStore{
		m:    make(map[string]challenge),
		ttl:  ttl,
		now:  now,
		stop: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *challengeStore) put(id string, angle int) time.Time {
	expiresAt := s.now().Add(s.ttl)
	s.mu.Lock()
	s.m[id] = challenge{targetAngle: angle, expiresAt: expiresAt}
	s.mu.Unlock()
	return expiresAt
}

// take removes the challenge and returns its angle when it has not expired
func (s *challengeStore) take(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.m[id]
	if !ok {
		return 0, false
	}
	delete(s.m, id)
	if s.now().After(c.expiresAt) {
		return 0, false
	}
	return c.targetAngle, true
}

func (s *challengeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *challengeStore) purge() {
	now := s.now()
	s.mu.Lock()
	for k, v := range s.m {
		if now.After(v.expiresAt) {
			delete(s.m, k)
		}
	}
	s.mu.Unlock()
}

func (s *challengeStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

func (s *challengeStore) close() {
	s.once.Do(func() { close(s.stop) })
}

// --- background images ---

func generateRotateBackgrounds(n int, size int) []image.Image {
	if n <= 0 {
		n = 1
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		imgs = append(imgs, newNoiseGradientImage(size, size))
	}
	return imgs
}

// newNoiseGradientImage paints a warm radial gradient with light noise
func newNoiseGradientImage(w, h int) image.Image {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x - w/2)
			dy := float64(y - h/2)
			t := math.Min(math.Sqrt(dx*dx+dy*dy)/float64(w/2), 1)
			base := uint8(230 - int(120*t))
			noise := uint8(rand.Intn(24))
			rgba.Set(x, y, color.RGBA{R: 255 - noise/2, G: base, B: base/3 + noise, A: 255})
		}
	}
	drawRect(rgba, 12, 12, w/3, h/12, color.RGBA{R: 255, G: 255, B: 255, A: 40})
	drawRect(rgba, w/2, h/3, w/3, h/10, color.RGBA{R: 0, G: 0, B: 0, A: 24})
	return rgba
}

func drawRect(dst *image.RGBA, x, y, w, h int, c color.RGBA) {
	rect := image.Rect(x, y, x+w, y+h)
	draw.Draw(dst, rect, &image.Uniform{C: c}, image.Point{}, draw.Over)
}
