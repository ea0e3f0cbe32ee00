package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yukesh4349/Dreampix/internal/collage"
	"github.com/yukesh4349/Dreampix/internal/errs"
	"github.com/yukesh4349/Dreampix/internal/model"
	"github.com/yukesh4349/Dreampix/internal/provider"
	"github.com/yukesh4349/Dreampix/internal/repository"
)

// maxCount caps the number of images per fan-out.
const maxCount = 4

// GenerateRequest carries one generation run's parameters. Account is nil
// for guest sessions; the caller owns the session lifecycle and passes the
// current account explicitly.
type GenerateRequest struct {
	Prompt         string
	Enhance        bool
	AspectRatio    model.AspectRatio
	Count          int
	ReferenceImage []byte
	Account        *model.Account
}

// GenerateService drives generation runs against the external model and
// applies the persistence policy.
type GenerateService interface {
	// Generate fans out Count parallel generation calls (twice when Enhance
	// is set), composes a collage from batches of two or more images, and
	// saves the produced artifacts: to the gallery when Account is present,
	// to history always.
	Generate(ctx context.Context, req GenerateRequest) (*model.GenerationResult, error)
}

type GenerateServiceImpl struct {
	gen    provider.ImageProvider
	images repository.ImageRepository
	log    *zap.Logger
}

// NewGenerateService constructs GenerateService with required dependencies.
func NewGenerateService(gen provider.ImageProvider, images repository.ImageRepository, log *zap.Logger) *GenerateServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &GenerateServiceImpl{gen: gen, images: images, log: log}
}

// Generate runs one orchestration call.
//
// Per-call nil results inside a batch are dropped silently; the run fails
// only on a transport-level generation error, on a collage composition
// error, or when every batch ends up empty (errs.ErrNoImages). Persistence
// happens after the result is assembled, and a failed write never hides the
// in-memory result: it is logged and swallowed.
func (s *GenerateServiceImpl) Generate(ctx context.Context, req GenerateRequest) (*model.GenerationResult, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("validation: empty prompt")
	}
	if !req.AspectRatio.Valid() {
		return nil, fmt.Errorf("validation: unsupported aspect ratio %q", req.AspectRatio)
	}
	if req.Count < 1 || req.Count > maxCount {
		return nil, fmt.Errorf("validation: count %d out of range [1,%d]", req.Count, maxCount)
	}

	start := time.Now()
	prefix := strconv.FormatInt(start.UnixMilli(), 10)

	var res *model.GenerationResult
	var err error
	if req.Enhance {
		res, err = s.generateEnhanced(ctx, req, prefix, start)
	} else {
		res, err = s.generatePlain(ctx, req, prefix, start)
	}
	if err != nil {
		return nil, err
	}

	s.persist(ctx, res, req.Account)
	return res, nil
}

// generatePlain runs the single original-prompt fan-out.
func (s *GenerateServiceImpl) generatePlain(ctx context.Context, req GenerateRequest, prefix string, start time.Time) (*model.GenerationResult, error) {
	images, err := s.fanOut(ctx, req.Prompt, req)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, errs.ErrNoImages
	}

	res := &model.GenerationResult{
		Original: s.buildBatch(images, prefix, "orig", req, start, "", false),
	}
	if len(images) >= 2 {
		col, err := s.composeCollage(images, prefix+"-collage", req.Prompt, false, req.Account, start)
		if err != nil {
			return nil, err
		}
		res.Collage = col
	}
	return res, nil
}

// generateEnhanced enhances the prompt, then runs the original and enhanced
// fan-outs concurrently. The collage, when produced, comes from the
// enhanced batch.
func (s *GenerateServiceImpl) generateEnhanced(ctx context.Context, req GenerateRequest, prefix string, start time.Time) (*model.GenerationResult, error) {
	enhanced, err := s.gen.EnhancePrompt(ctx, req.Prompt)
	if err != nil || enhanced == "" {
		// Enhancement failure degrades to the original prompt, never aborts.
		if err != nil {
			s.log.Warn("prompt enhancement failed, falling back to original prompt", zap.Error(err))
		}
		enhanced = req.Prompt
	}

	var origImages, enhImages [][]byte
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		origImages, err = s.fanOut(ctx, req.Prompt, req)
		return err
	})
	g.Go(func() error {
		var err error
		enhImages, err = s.fanOut(ctx, enhanced, req)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(origImages) == 0 && len(enhImages) == 0 {
		return nil, errs.ErrNoImages
	}

	res := &model.GenerationResult{
		Original: s.buildBatch(origImages, prefix, "orig", req, start, "", false),
		Enhanced: s.buildBatch(enhImages, prefix, "enh", req, start, enhanced, true),
	}

	if len(origImages) > 0 && len(enhImages) > 0 {
		explanation, err := s.gen.Explain(ctx, req.Prompt, enhanced)
		if err != nil {
			s.log.Warn("prompt explanation unavailable", zap.Error(err))
		} else {
			res.Explanation = explanation
		}
	}

	if len(enhImages) >= 2 {
		col, err := s.composeCollage(enhImages, prefix+"-collage-enh", enhanced, true, req.Account, start)
		if err != nil {
			return nil, err
		}
		res.Collage = col
	}
	return res, nil
}

// fanOut issues count generation calls in parallel and waits for all of
// them to settle. Calls that produce no image are filtered out; a call that
// errors fails the whole fan-out (after the barrier).
func (s *GenerateServiceImpl) fanOut(ctx context.Context, prompt string, req GenerateRequest) ([][]byte, error) {
	results := make([][]byte, req.Count)
	g := new(errgroup.Group)
	for i := 0; i < req.Count; i++ {
		g.Go(func() error {
			data, err := s.gen.GenerateImage(ctx, prompt, req.AspectRatio, req.ReferenceImage)
			if err != nil {
				return fmt.Errorf("generate image: %w", err)
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([][]byte, 0, req.Count)
	for _, data := range results {
		if data != nil {
			out = append(out, data)
		}
	}
	return out, nil
}

// buildBatch wraps raw images into GeneratedImage records with role-tagged
// IDs. Owner attribution happens here, at creation time, and only when an
// account is present.
func (s *GenerateServiceImpl) buildBatch(datas [][]byte, prefix, tag string, req GenerateRequest, at time.Time, enhancedPrompt string, isEnhanced bool) []model.GeneratedImage {
	batch := make([]model.GeneratedImage, 0, len(datas))
	for i, data := range datas {
		batch = append(batch, model.GeneratedImage{
			ID:             fmt.Sprintf("%s-%s-%d", prefix, tag, i),
			OwnerID:        ownerID(req.Account),
			Prompt:         req.Prompt,
			EnhancedPrompt: enhancedPrompt,
			Data:           data,
			CreatedAt:      at,
			IsEnhanced:     isEnhanced,
			AspectRatio:    req.AspectRatio,
		})
	}
	return batch
}

// composeCollage composites a batch into a single 1:1 grid image.
// Composition failure is loud: collage absence is meaningful, so it must
// not be dropped silently.
func (s *GenerateServiceImpl) composeCollage(datas [][]byte, id, prompt string, isEnhanced bool, account *model.Account, at time.Time) (*model.GeneratedImage, error) {
	data, err := collage.Compose(datas)
	if err != nil {
		return nil, fmt.Errorf("compose collage: %w", err)
	}
	return &model.GeneratedImage{
		ID:          id,
		OwnerID:     ownerID(account),
		Prompt:      prompt,
		Data:        data,
		CreatedAt:   at,
		IsEnhanced:  isEnhanced,
		AspectRatio: model.AspectSquare,
		IsCollage:   true,
	}, nil
}

// persist applies the persistence split: every artifact goes to history
// unconditionally, and to the gallery only when an account is present.
// Each write is independent; a failure is logged and does not fail the run
// or roll back sibling writes.
func (s *GenerateServiceImpl) persist(ctx context.Context, res *model.GenerationResult, account *model.Account) {
	artifacts := make([]model.GeneratedImage, 0, len(res.Original)+len(res.Enhanced)+1)
	artifacts = append(artifacts, res.Original...)
	artifacts = append(artifacts, res.Enhanced...)
	if res.Collage != nil {
		artifacts = append(artifacts, *res.Collage)
	}

	for i := range artifacts {
		img := &artifacts[i]
		if account != nil {
			if err := s.images.Put(ctx, model.Gallery, img); err != nil {
				s.log.Error("gallery save failed", zap.String("id", img.ID), zap.Error(err))
			}
		}
		if err := s.images.Put(ctx, model.History, img); err != nil {
			s.log.Error("history save failed", zap.String("id", img.ID), zap.Error(err))
		}
	}
}

func ownerID(account *model.Account) string {
	if account == nil {
		return ""
	}
	return account.ID.String()
}
