// Package importer orchestrates a full certificate batch import.
//
// One batch is one scanned multi-page PDF: every candidate contributes two
// consecutive pages (certificate front and back). The pipeline splits the
// batch, re-merges each pair into a per-candidate document, recognizes the
// front page, validates the extracted fields, and files the document under
// the success or errors folder accordingly.
//
// Failure isolation is the central design rule here: one mangled candidate
// must never abort the rest of the batch. Every per-candidate step runs
// behind a recover boundary, and each candidate resolves to an explicit
// outcome before the next one starts.
package importer

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Shimizu-Technology/certificate-import-api/internal/filestore"
	"github.com/Shimizu-Technology/certificate-import-api/internal/models"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/fields"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/pdfops"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/preprocess"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/validate"
)

// Repository is the slice of the database layer the importer needs.
// Go Pattern: Accept interfaces, return structs. The concrete *database.DB
// satisfies this; tests plug in an in-memory stub.
type Repository interface {
	CreateCandidate(ctx context.Context, c *models.Candidate) error
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	UpdateCandidate(ctx context.Context, c *models.Candidate) error
	CreateImportError(ctx context.Context, e *models.ImportError) error
	DeleteImportErrorsForCandidate(ctx context.Context, candidateID string) error
}

// Renderer rasterizes one PDF page to an encoded image.
type Renderer interface {
	Render(pdfBytes []byte, pageIndex int) ([]byte, error)
}

// Recognizer extracts text from a raster image.
type Recognizer interface {
	Recognize(imageData []byte) (string, error)
}

// TextProber extracts an embedded text layer from a PDF page, returning ""
// for image-only pages.
type TextProber func(data []byte) (string, error)

// Batch describes one upload to process.
type Batch struct {
	ID           string
	Session      int
	ExamCode     string
	CentreNumber string
	SourcePath   string // Staged upload on local disk
	OriginalName string
	UploaderID   *string
}

// Service runs batch imports and post-hoc corrections.
type Service struct {
	store    *filestore.Store
	repo     Repository
	renderer Renderer
	ocr      Recognizer
	prober   TextProber
}

// New creates an importer service.
func New(store *filestore.Store, repo Repository, renderer Renderer, ocr Recognizer, prober TextProber) *Service {
	return &Service{
		store:    store,
		repo:     repo,
		renderer: renderer,
		ocr:      ocr,
		prober:   prober,
	}
}

// ProcessBatch runs the full pipeline for one uploaded batch.
//
// Candidates within a batch are processed strictly sequentially; each one
// reaches a terminal outcome (saved valid, saved invalid, or error record)
// before the next begins. Per-candidate failures are folded into the result,
// not returned. Only batch-level failures return an error: an unreadable
// source document, or a failure to archive the source at the end.
func (s *Service) ProcessBatch(ctx context.Context, batch Batch) (*models.BatchResult, error) {
	result := &models.BatchResult{
		SavedFiles: []string{},
		Errors:     []string{},
	}

	source, err := os.ReadFile(batch.SourcePath)
	if err != nil {
		return result, fmt.Errorf("failed to read batch source: %w", err)
	}
	if !pdfops.ValidatePDF(source) {
		return result, fmt.Errorf("%w: %s is not a PDF document", pdfops.ErrMalformedDocument, batch.OriginalName)
	}

	pages, err := pdfops.Split(source)
	if err != nil {
		return result, fmt.Errorf("failed to split batch: %w", err)
	}

	pairs := pdfops.PairPages(pages)
	scope := filestore.Scope{Session: batch.Session, Exam: batch.ExamCode, Centre: batch.CentreNumber}

	log.Printf("📄 Batch %s: %d pages, %d candidates", batch.ID, len(pages), len(pairs))

	processed := 0
	for _, pair := range pairs {
		// Cancellation is honored between candidates, never mid-candidate:
		// a candidate that has started always reaches a terminal state.
		if err := ctx.Err(); err != nil {
			tallyResult(result, processed)
			return result, err
		}
		s.processCandidate(ctx, scope, pair, batch, result)
		processed++
	}
	tallyResult(result, processed)

	// Archive the source under imported/ and remove the staged upload.
	// This is the one post-split step that fails the whole batch: losing
	// track of the original would make the import unauditable.
	archiveName, err := s.store.NextImportedName(scope, batch.OriginalName)
	if err != nil {
		return result, fmt.Errorf("failed to pick archive name: %w", err)
	}
	if _, err := s.store.MoveOriginalImportedPdf(scope, archiveName, source); err != nil {
		return result, fmt.Errorf("failed to archive batch source: %w", err)
	}
	if err := s.store.Delete(batch.SourcePath); err != nil {
		return result, fmt.Errorf("failed to remove staged source: %w", err)
	}

	log.Printf("✅ Batch %s: %d saved, %d errors, source archived as %s",
		batch.ID, len(result.SavedFiles), len(result.Errors), archiveName)

	return result, nil
}

// processCandidate takes one page pair to a terminal outcome and folds it
// into the result. It never returns an error and never panics out.
func (s *Service) processCandidate(ctx context.Context, scope filestore.Scope, pair pdfops.Pair, batch Batch, result *models.BatchResult) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("candidate %d: unhandled failure: %v", pair.Index, r)
			log.Printf("❌ Batch %s: %s", batch.ID, msg)
			s.recordError(ctx, batch, &models.ImportError{
				Kind:    models.ErrUnhandledException,
				Message: msg,
			})
			result.Errors = append(result.Errors, msg)
		}
	}()

	// Merge the pair into one two-page candidate document. A dangling odd
	// final page becomes a single-page document.
	var merged []byte
	var err error
	if pair.Page2 == nil {
		merged, err = pdfops.Merge(pair.Page1)
	} else {
		merged, err = pdfops.Merge(pair.Page1, pair.Page2)
	}
	if err != nil {
		msg := fmt.Sprintf("candidate %d: %v", pair.Index, err)
		s.recordError(ctx, batch, &models.ImportError{
			Kind:    models.ErrMergeFailure,
			Message: msg,
		})
		result.Errors = append(result.Errors, msg)
		return
	}

	name := fmt.Sprintf("%d_%s_%s_%04d.pdf", batch.Session, batch.ExamCode, batch.CentreNumber, pair.Index)
	savedPath, err := s.store.SaveSuccess(scope, name, merged)
	if err != nil {
		msg := fmt.Sprintf("candidate %d: failed to save %s: %v", pair.Index, name, err)
		s.recordError(ctx, batch, &models.ImportError{
			Kind:    models.ErrFileNotFound,
			Message: msg,
		})
		result.Errors = append(result.Errors, msg)
		return
	}

	// Recognize the certificate front. A usable embedded text layer wins;
	// otherwise render, clean and OCR the page image.
	text, err := s.extractText(pair.Page1)
	if err != nil {
		// The file stays where it is: an operator can re-run recognition
		// later, and the saved artifact must not be lost meanwhile.
		msg := fmt.Sprintf("candidate %d: recognition failed: %v", pair.Index, err)
		s.recordError(ctx, batch, &models.ImportError{
			Kind:     models.ErrOCRIssue,
			Message:  msg,
			FilePath: &savedPath,
		})
		result.Errors = append(result.Errors, msg)
		return
	}

	parsed := fields.Parse(text)
	defects := validate.Check(validate.Input{
		Page1:        pair.Page1,
		OCRText:      text,
		Fields:       parsed,
		SavedPath:    savedPath,
		BatchSession: batch.Session,
	})

	candidate := &models.Candidate{
		CandidateName:    parsed.CandidateName,
		CandidateNumber:  parsed.CandidateNumber,
		Session:          effectiveSession(parsed.SessionYear, batch.Session),
		CentreNumber:     parsed.CentreNumber,
		FormCentreNumber: batch.CentreNumber,
		ExamCode:         batch.ExamCode,
		FilePath:         savedPath,
		RawOCRText:       text,
		IsValid:          len(defects) == 0,
		BatchID:          batchIDPtr(batch.ID),
		UploaderID:       batch.UploaderID,
	}

	if len(defects) > 0 {
		// Invalid candidates are quarantined: the document moves to the
		// errors folder and every defect is recorded against the record.
		errorPath, moveErr := s.store.MoveToErrorFolder(savedPath)
		if moveErr != nil {
			msg := fmt.Sprintf("candidate %d: failed to quarantine %s: %v", pair.Index, savedPath, moveErr)
			s.recordError(ctx, batch, &models.ImportError{
				Kind:     models.ErrFileNotFound,
				Message:  msg,
				FilePath: &savedPath,
			})
			result.Errors = append(result.Errors, msg)
			return
		}
		candidate.FilePath = errorPath
	}

	if err := s.repo.CreateCandidate(ctx, candidate); err != nil {
		msg := fmt.Sprintf("candidate %d: failed to persist record: %v", pair.Index, err)
		s.recordError(ctx, batch, &models.ImportError{
			Kind:     models.ErrUnhandledException,
			Message:  msg,
			FilePath: &candidate.FilePath,
		})
		result.Errors = append(result.Errors, msg)
		return
	}

	if len(defects) == 0 {
		result.SavedFiles = append(result.SavedFiles, savedPath)
		return
	}

	for _, d := range defects {
		msg := fmt.Sprintf("candidate %d: %s: %s", pair.Index, d.Field, d.Message)
		s.recordError(ctx, batch, &models.ImportError{
			CandidateID:     &candidate.ID,
			FilePath:        &candidate.FilePath,
			CandidateName:   strPtr(candidate.CandidateName),
			CandidateNumber: strPtr(candidate.CandidateNumber),
			FieldName:       d.Field,
			Kind:            d.Kind,
			Message:         d.Message,
		})
		result.Errors = append(result.Errors, msg)
	}
}

// extractText returns recognized text for a certificate front page.
func (s *Service) extractText(page []byte) (string, error) {
	if s.prober != nil {
		if text, err := s.prober(page); err == nil && text != "" {
			return text, nil
		}
	}

	img, err := s.renderer.Render(page, 0)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	cleaned := preprocess.Clean(img)
	text, err := s.ocr.Recognize(cleaned)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}

// recordError persists an import error, filling in batch-level context.
// A persistence failure here is logged and swallowed: error bookkeeping
// must never take down the run it is reporting on.
func (s *Service) recordError(ctx context.Context, batch Batch, e *models.ImportError) {
	e.Session = batch.Session
	e.UploaderID = batch.UploaderID
	if err := s.repo.CreateImportError(ctx, e); err != nil {
		log.Printf("⚠️  Batch %s: failed to record import error (%s): %v", batch.ID, e.Kind, err)
	}
}

// MarkCorrected applies an operator's manual fix to a candidate: fields are
// replaced and the record becomes valid. The file stays wherever it
// currently sits and the error records stay on the books — they document
// what was wrong until RestoreToSuccess completes the round trip and
// clears them.
func (s *Service) MarkCorrected(ctx context.Context, candidateID string, req models.CorrectCandidateRequest) (*models.Candidate, error) {
	c, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	c.CandidateName = req.CandidateName
	c.CandidateNumber = req.CandidateNumber
	if req.Session != 0 {
		c.Session = req.Session
	}
	if req.CentreNumber != "" {
		c.CentreNumber = req.CentreNumber
	}
	c.IsValid = true

	if err := s.repo.UpdateCandidate(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}
	return c, nil
}

// RestoreToSuccess moves a corrected candidate's document from the errors
// folder back to success and clears the candidate's error records. The
// candidate must already be valid and its file must actually sit under an
// errors folder; anything else is reported, not silently ignored.
func (s *Service) RestoreToSuccess(ctx context.Context, candidateID string) (*models.Candidate, error) {
	c, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !c.IsValid {
		return nil, fmt.Errorf("candidate %s has not been corrected yet", c.ID)
	}
	if !s.store.InRole(c.FilePath, filestore.RoleErrors) {
		return nil, fmt.Errorf("candidate file %s is not in an errors folder", c.FilePath)
	}

	newPath, err := s.store.MoveToSuccessFolder(c.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to restore file: %w", err)
	}

	c.FilePath = newPath
	if err := s.repo.UpdateCandidate(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}
	if err := s.repo.DeleteImportErrorsForCandidate(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("failed to clear import errors: %w", err)
	}
	return c, nil
}

// tallyResult folds the terminal per-candidate counts into the result.
// TotalCandidates reports successfully saved candidates only; everything
// else processed so far counts as failed.
func tallyResult(r *models.BatchResult, processed int) {
	r.TotalCandidates = len(r.SavedFiles)
	r.FailedCandidates = processed - len(r.SavedFiles)
}

func effectiveSession(parsed, batchSession int) int {
	if parsed != 0 {
		return parsed
	}
	return batchSession
}

func batchIDPtr(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
