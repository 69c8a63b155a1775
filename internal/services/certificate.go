package services

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/ceustudio-backend/internal/modules/studio"
	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/gcp"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

const (
	certWidth  = 1400
	certHeight = 1000

	certCreditLine = "1.0 LU|HSW"
	certIssuer     = "MR CEU Studio"
)

var (
	certInk    = color.NRGBA{R: 0x1C, G: 0x1C, B: 0x1E, A: 0xFF}
	certMuted  = color.NRGBA{R: 0x6B, G: 0x6B, B: 0x70, A: 0xFF}
	certAccent = color.NRGBA{R: 0xB0, G: 0x8D, B: 0x57, A: 0xFF}
	certPaper  = color.NRGBA{R: 0xFA, G: 0xF8, B: 0xF4, A: 0xFF}
)

type Certificate struct {
	PNG        []byte
	FileName   string
	StorageKey string
	URL        string
}

type CertificateService interface {
	Render(ctx context.Context, learnerID uuid.UUID) (*Certificate, error)
}

type certFaces struct {
	heading font.Face
	name    font.Face
	body    font.Face
	small   font.Face
}

type certificateService struct {
	log      *logger.Logger
	learners LearnerService
	bucket   gcp.BucketService
	faces    certFaces
	now      func() time.Time
}

// NewCertificateService renders with the Go fonts unless fontPath names a
// TrueType file to use for the body text. bucket may be nil.
func NewCertificateService(log *logger.Logger, learners LearnerService, bucket gcp.BucketService, fontPath string) (CertificateService, error) {
	serviceLog := log.With("service", "CertificateService")
	regular := goregular.TTF
	if p := strings.TrimSpace(fontPath); p != "" {
		serviceLog.Info("Loading certificate font", "font", p)
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("could not load certificate font: %w", err)
		}
		regular = raw
	}
	regFont, err := truetype.Parse(regular)
	if err != nil {
		return nil, fmt.Errorf("parse certificate font: %w", err)
	}
	boldFont, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse certificate bold font: %w", err)
	}
	return &certificateService{
		log:      serviceLog,
		learners: learners,
		bucket:   bucket,
		faces: certFaces{
			heading: truetype.NewFace(boldFont, &truetype.Options{Size: 52}),
			name:    truetype.NewFace(boldFont, &truetype.Options{Size: 44}),
			body:    truetype.NewFace(regFont, &truetype.Options{Size: 26}),
			small:   truetype.NewFace(regFont, &truetype.Options{Size: 20}),
		},
		now: time.Now,
	}, nil
}

// Render draws the completion certificate for the studio course. Learners
// who have not finished it get a 404.
func (cs *certificateService) Render(ctx context.Context, learnerID uuid.UUID) (*Certificate, error) {
	l, err := cs.learners.Get(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if !l.HasCompleted(studio.CourseTitle) {
		return nil, apierr.NotFound("certificate_not_found", "No completed course to certify")
	}
	completedAt := cs.now().UTC()
	completions, err := cs.learners.Completions(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	for _, c := range completions {
		if c.CourseTitle == studio.CourseTitle {
			completedAt = c.CompletedAt
			break
		}
	}

	buf, err := cs.draw(certificateFields{
		LearnerName: l.Name,
		AIANumber:   l.AIANumber,
		Course:      studio.CourseTitle,
		CompletedAt: completedAt,
	})
	if err != nil {
		return nil, err
	}
	slug := slugify(studio.CourseTitle)
	cert := &Certificate{PNG: buf.Bytes(), FileName: slug + ".png"}

	if cs.bucket != nil && cs.bucket.Enabled(gcp.BucketCategoryCertificate) {
		key := fmt.Sprintf("certificates/%s/%s.png", learnerID, slug)
		if err := cs.bucket.UploadFile(ctx, gcp.BucketCategoryCertificate, key, bytes.NewReader(cert.PNG)); err != nil {
			cs.log.Warn("certificate upload failed (ignored)", "learner_id", learnerID, "error", err)
		} else {
			cert.StorageKey = key
			cert.URL = cs.bucket.PublicURL(gcp.BucketCategoryCertificate, key)
		}
	}
	return cert, nil
}

type certificateFields struct {
	LearnerName string
	AIANumber   string
	Course      string
	CompletedAt time.Time
}

func (cs *certificateService) draw(f certificateFields) (bytes.Buffer, error) {
	const w, h = float64(certWidth), float64(certHeight)
	dc := gg.NewContext(certWidth, certHeight)

	dc.SetColor(certPaper)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetColor(certAccent)
	dc.SetLineWidth(6)
	dc.DrawRectangle(40, 40, w-80, h-80)
	dc.Stroke()
	dc.SetLineWidth(1.5)
	dc.DrawRectangle(60, 60, w-120, h-120)
	dc.Stroke()

	cx := w / 2
	dc.SetColor(certMuted)
	dc.SetFontFace(cs.faces.small)
	dc.DrawStringAnchored(strings.ToUpper(certIssuer), cx, 150, 0.5, 0.5)

	dc.SetColor(certInk)
	dc.SetFontFace(cs.faces.heading)
	dc.DrawStringAnchored("Certificate of Completion", cx, 240, 0.5, 0.5)

	dc.SetColor(certMuted)
	dc.SetFontFace(cs.faces.body)
	dc.DrawStringAnchored("This certifies that", cx, 350, 0.5, 0.5)

	dc.SetColor(certInk)
	dc.SetFontFace(cs.faces.name)
	dc.DrawStringAnchored(f.LearnerName, cx, 430, 0.5, 0.5)
	dc.SetColor(certAccent)
	dc.SetLineWidth(2)
	dc.DrawLine(cx-320, 470, cx+320, 470)
	dc.Stroke()

	if f.AIANumber != "" {
		dc.SetColor(certMuted)
		dc.SetFontFace(cs.faces.small)
		dc.DrawStringAnchored("AIA Member "+f.AIANumber, cx, 505, 0.5, 0.5)
	}

	dc.SetColor(certMuted)
	dc.SetFontFace(cs.faces.body)
	dc.DrawStringAnchored("has successfully completed", cx, 580, 0.5, 0.5)

	dc.SetColor(certInk)
	dc.SetFontFace(cs.faces.name)
	dc.DrawStringWrapped(f.Course, cx, 660, 0.5, 0.5, w-300, 1.3, gg.AlignCenter)

	dc.SetColor(certAccent)
	dc.SetFontFace(cs.faces.body)
	dc.DrawStringAnchored(certCreditLine, cx, 750, 0.5, 0.5)

	dc.SetColor(certMuted)
	dc.SetFontFace(cs.faces.small)
	dc.DrawStringAnchored("Completed "+f.CompletedAt.Format("January 2, 2006"), cx, 860, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
