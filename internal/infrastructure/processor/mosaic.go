package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"video-uploader/internal/pkg/logger"
	"video-uploader/pkg/constants"
	apperrors "video-uploader/pkg/errors"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const framePattern = "frame_%05d.jpg"

type MosaicOptions struct {
	IntervalSeconds    float64
	MaxThumbsPerSprite int
	ThumbHeight        int
}

// SpriteLayout describes one sprite image. First is the zero-based index of
// its first thumbnail across the whole video.
type SpriteLayout struct {
	Index   int
	First   int
	Count   int
	Columns int
	Rows    int
}

func (s SpriteLayout) FileName() string {
	return fmt.Sprintf("thumbnails_%d.jpg", s.Index)
}

type MosaicPlan struct {
	ThumbWidth  int
	ThumbHeight int
	Interval    float64
	TotalThumbs int
	Sprites     []SpriteLayout
}

type MosaicResult struct {
	Sprites  []string
	CueSheet string
	Plan     MosaicPlan
}

// PlanMosaic computes the sprite grid for a video of the given duration.
// A non-positive duration or interval yields a plan with no sprites.
func PlanMosaic(duration float64, opts MosaicOptions) MosaicPlan {
	plan := MosaicPlan{
		ThumbWidth:  int(math.Round(float64(opts.ThumbHeight) * 16 / 9)),
		ThumbHeight: opts.ThumbHeight,
		Interval:    opts.IntervalSeconds,
	}
	if duration <= 0 || opts.IntervalSeconds <= 0 || opts.MaxThumbsPerSprite <= 0 || opts.ThumbHeight <= 0 {
		return plan
	}

	plan.TotalThumbs = int(math.Ceil(duration / opts.IntervalSeconds))
	spriteCount := (plan.TotalThumbs + opts.MaxThumbsPerSprite - 1) / opts.MaxThumbsPerSprite

	placed := 0
	for i := 0; i < spriteCount; i++ {
		n := min(opts.MaxThumbsPerSprite, plan.TotalThumbs-placed)
		cols := int(math.Ceil(math.Sqrt(float64(n))))
		rows := (n + cols - 1) / cols
		plan.Sprites = append(plan.Sprites, SpriteLayout{
			Index:   i,
			First:   placed,
			Count:   n,
			Columns: cols,
			Rows:    rows,
		})
		placed += n
	}
	return plan
}

// CueSheet renders the WEBVTT file mapping each interval to its sprite region.
func (p MosaicPlan) CueSheet() []byte {
	var buf bytes.Buffer
	buf.WriteString("WEBVTT\n")
	seq := 1
	for _, sprite := range p.Sprites {
		for i := 0; i < sprite.Count; i++ {
			global := sprite.First + i
			start := float64(global) * p.Interval
			end := start + p.Interval
			x := (i % sprite.Columns) * p.ThumbWidth
			y := (i / sprite.Columns) * p.ThumbHeight
			fmt.Fprintf(&buf, "\n%d\n%s --> %s\n%s#xywh=%d,%d,%d,%d\n",
				seq, FormatTimestamp(start), FormatTimestamp(end),
				sprite.FileName(), x, y, p.ThumbWidth, p.ThumbHeight)
			seq++
		}
	}
	return buf.Bytes()
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm.
func FormatTimestamp(seconds float64) string {
	ms := int64(math.Round(seconds * 1000))
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	s := (ms / 1000) % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

// MosaicGenerator extracts interval frames with ffmpeg and tiles them into
// sprite sheets. When ffmpeg's tile filter fails for a sprite the frames are
// composed in-process with the same grid.
type MosaicGenerator struct {
	runner     Runner
	ffmpegPath string
	log        *zap.Logger
}

func NewMosaicGenerator(runner Runner, ffmpegPath string, log *zap.Logger) *MosaicGenerator {
	return &MosaicGenerator{runner: runner, ffmpegPath: ffmpegPath, log: logger.Named(log, "mosaic")}
}

func (g *MosaicGenerator) Generate(ctx context.Context, inputPath, outputDir string, duration float64, opts MosaicOptions) (*MosaicResult, error) {
	plan := PlanMosaic(duration, opts)
	result := &MosaicResult{Plan: plan}
	if len(plan.Sprites) == 0 {
		g.log.Info("no thumbnails to generate", zap.Float64("duration", duration))
		return result, nil
	}

	framesDir, err := os.MkdirTemp(outputDir, ".frames-")
	if err != nil {
		return nil, apperrors.ErrTransientIO(fmt.Errorf("create frames dir: %w", err))
	}
	defer os.RemoveAll(framesDir)

	res := g.runner.Run(ctx, g.ffmpegPath,
		"-y",
		"-i", inputPath,
		"-vf", fmt.Sprintf("fps=1/%s,scale=%d:%d", formatSeconds(plan.Interval), plan.ThumbWidth, plan.ThumbHeight),
		"-q:v", "3",
		filepath.Join(framesDir, framePattern),
	)
	if !res.OK() {
		return nil, apperrors.ErrProcessExecution("ffmpeg", res.Failure())
	}

	for _, sprite := range plan.Sprites {
		out := filepath.Join(outputDir, sprite.FileName())
		if err := g.tile(ctx, framesDir, out, sprite); err != nil {
			g.log.Warn("tile filter failed, composing sprite in-process",
				zap.Int("sprite", sprite.Index), zap.Error(err))
			if err := composeSprite(framesDir, out, sprite, plan.ThumbWidth, plan.ThumbHeight); err != nil {
				return nil, err
			}
		}
		result.Sprites = append(result.Sprites, out)
	}

	cuePath := filepath.Join(outputDir, constants.CueSheetName)
	if err := os.WriteFile(cuePath, plan.CueSheet(), 0644); err != nil {
		return nil, apperrors.ErrTransientIO(fmt.Errorf("write cue sheet: %w", err))
	}
	result.CueSheet = cuePath

	g.log.Info("mosaic generated",
		zap.Int("thumbnails", plan.TotalThumbs),
		zap.Int("sprites", len(plan.Sprites)))
	return result, nil
}

func (g *MosaicGenerator) tile(ctx context.Context, framesDir, out string, sprite SpriteLayout) error {
	res := g.runner.Run(ctx, g.ffmpegPath,
		"-y",
		"-start_number", strconv.Itoa(sprite.First+1),
		"-i", filepath.Join(framesDir, framePattern),
		"-vf", fmt.Sprintf("trim=end_frame=%d,tile=%dx%d", sprite.Count, sprite.Columns, sprite.Rows),
		"-frames:v", "1",
		"-q:v", "3",
		out,
	)
	if !res.OK() {
		return res.Failure()
	}
	return nil
}

// composeSprite pastes extracted frames onto a black canvas using the same
// row-major grid as the tile filter. Missing frames are left black.
func composeSprite(framesDir, out string, sprite SpriteLayout, thumbWidth, thumbHeight int) error {
	canvas := imaging.New(sprite.Columns*thumbWidth, sprite.Rows*thumbHeight, color.Black)
	for i := 0; i < sprite.Count; i++ {
		framePath := filepath.Join(framesDir, fmt.Sprintf(framePattern, sprite.First+i+1))
		frame, err := imaging.Open(framePath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return apperrors.ErrTransientIO(fmt.Errorf("open frame %s: %w", framePath, err))
		}
		if b := frame.Bounds(); b.Dx() != thumbWidth || b.Dy() != thumbHeight {
			frame = imaging.Resize(frame, thumbWidth, thumbHeight, imaging.Lanczos)
		}
		x := (i % sprite.Columns) * thumbWidth
		y := (i / sprite.Columns) * thumbHeight
		canvas = imaging.Paste(canvas, frame, image.Pt(x, y))
	}
	if err := imaging.Save(canvas, out, imaging.JPEGQuality(85)); err != nil {
		return apperrors.ErrTransientIO(fmt.Errorf("save sprite %s: %w", out, err))
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
