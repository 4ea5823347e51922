package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/go-resty/resty/v2"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// ArtifactInfo describes a generated certificate document
type ArtifactInfo struct {
	ArtifactURL string
	LocalPath   string
}

// ArtifactGenerator produces a durable certificate document and returns its
// public URL. Generation failures leave no partial artifact behind.
type ArtifactGenerator interface {
	Generate(studentName, courseTitle, certCode string, issuedAt time.Time, verificationURL string) (*ArtifactInfo, error)
}

// PNGCertificateGenerator renders certificates as PNG files under the public
// directory and verifies the published URL is reachable before reporting
// success.
type PNGCertificateGenerator struct {
	baseURL   string
	publicDir string
	logoPath  string
	fnt       *truetype.Font
	client    *resty.Client
}

var _ ArtifactGenerator = (*PNGCertificateGenerator)(nil)

func NewPNGCertificateGenerator(baseURL, publicDir, fontPath, logoPath string, timeout time.Duration) *PNGCertificateGenerator {
	g := &PNGCertificateGenerator{
		baseURL:   baseURL,
		publicDir: publicDir,
		logoPath:  logoPath,
		client:    resty.New().SetTimeout(timeout),
	}
	if fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			log.Printf("[CERT] could not read font %s: %v", fontPath, err)
			return g
		}
		f, err := truetype.Parse(data)
		if err != nil {
			log.Printf("[CERT] could not parse font %s: %v", fontPath, err)
			return g
		}
		g.fnt = f
	}
	return g
}

func (g *PNGCertificateGenerator) Generate(studentName, courseTitle, certCode string, issuedAt time.Time, verificationURL string) (*ArtifactInfo, error) {
	const width, height = 1200, 850

	dc := gg.NewContext(width, height)

	// Background and double border
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB255(27, 42, 74)
	dc.SetLineWidth(8)
	dc.DrawRectangle(30, 30, width-60, height-60)
	dc.Stroke()
	dc.SetLineWidth(2)
	dc.DrawRectangle(48, 48, width-96, height-96)
	dc.Stroke()

	if g.logoPath != "" {
		if logo, err := gg.LoadImage(g.logoPath); err == nil {
			dc.DrawImageAnchored(logo, width/2, 130, 0.5, 0.5)
		} else {
			log.Printf("[CERT] could not load logo %s: %v", g.logoPath, err)
		}
	}

	cx := float64(width) / 2

	g.setFace(dc, 52)
	dc.SetRGB255(27, 42, 74)
	dc.DrawStringAnchored("CERTIFICATE OF COMPLETION", cx, 230, 0.5, 0.5)

	g.setFace(dc, 26)
	dc.SetRGB255(102, 102, 102)
	dc.DrawStringAnchored("This is to certify that", cx, 330, 0.5, 0.5)

	g.setFace(dc, 60)
	dc.SetRGB255(46, 134, 171)
	dc.DrawStringAnchored(studentName, cx, 420, 0.5, 0.5)

	g.setFace(dc, 26)
	dc.SetRGB255(102, 102, 102)
	dc.DrawStringAnchored("has successfully completed the course", cx, 500, 0.5, 0.5)

	g.setFace(dc, 40)
	dc.SetRGB255(27, 42, 74)
	dc.DrawStringAnchored(courseTitle, cx, 570, 0.5, 0.5)

	g.setFace(dc, 22)
	dc.SetRGB255(102, 102, 102)
	dc.DrawStringAnchored("Issued on "+issuedAt.Format("January 2, 2006"), cx, 660, 0.5, 0.5)
	dc.DrawStringAnchored("Certificate No: "+certCode, cx, 700, 0.5, 0.5)

	g.setFace(dc, 18)
	dc.DrawStringAnchored("Verify at "+verificationURL, cx, 760, 0.5, 0.5)

	destDir := filepath.Join(g.publicDir, "certificates")
	filename := certCode + ".png"

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding certificate png: %w", err)
	}

	localPath, err := SaveArtifact(destDir, filename, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("storing certificate artifact: %w", err)
	}

	artifactURL := g.baseURL + "/certificates/" + filename

	// Sanity check: the published URL must actually be fetchable
	if err := g.verifyReachable(artifactURL); err != nil {
		RemoveFileIfExists(localPath)
		return nil, fmt.Errorf("artifact url not reachable: %w", err)
	}

	return &ArtifactInfo{ArtifactURL: artifactURL, LocalPath: localPath}, nil
}

func (g *PNGCertificateGenerator) verifyReachable(url string) error {
	resp, err := g.client.R().Get(url)
	if err != nil {
		return err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	return nil
}

// setFace switches the drawing context to the configured TTF at the given
// size, keeping gg's built-in face when no font file is available
func (g *PNGCertificateGenerator) setFace(dc *gg.Context, size float64) {
	if g.fnt == nil {
		return
	}
	dc.SetFontFace(truetype.NewFace(g.fnt, &truetype.Options{
		Size:    size,
		Hinting: font.HintingFull,
	}))
}
