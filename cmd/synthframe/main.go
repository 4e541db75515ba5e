package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/ivlev/sockpair/internal/analyzer"
	"github.com/ivlev/sockpair/internal/config"
	"github.com/ivlev/sockpair/internal/report"
)

func main() {
	outPtr := flag.String("out", filepath.Join(os.TempDir(), "synth_pair.png"), "Where to save the synthetic frame")
	reportDirPtr := flag.String("report-dir", "output", "Directory for the YAML report")
	flag.Parse()

	reportPath := report.GenerateReportPath(*reportDirPtr)

	fmt.Println("=== Synthetic Pair Detection Test ===")
	fmt.Printf("Output: %s\n\n", reportPath)

	// Step 1: Create synthetic test image
	fmt.Println("[1/3] Creating synthetic test image...")
	img := createTestImage(200, 400)

	f, err := os.Create(*outPtr)
	if err != nil {
		log.Fatalf("Failed to create image file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		log.Fatalf("Failed to encode image: %v", err)
	}
	fmt.Printf("✓ Created test image: %s (200x400)\n\n", *outPtr)

	// Step 2: Detect regions
	fmt.Println("[2/3] Detecting color regions...")
	frame, err := analyzer.NewFrame(img)
	if err != nil {
		log.Fatalf("Failed to wrap frame: %v", err)
	}

	settings := config.DefaultSettings()
	regions, err := analyzer.FindColorRegions(frame, settings)
	if err != nil {
		log.Fatalf("Failed to detect regions: %v", err)
	}
	fmt.Printf("✓ Detected %d regions\n", len(regions))
	for i, r := range regions {
		fmt.Printf("  Region %d: %v size=%d rgb=(%d,%d,%d)\n", i, r.Bounds(), r.Size, r.Color.R, r.Color.G, r.Color.B)
	}
	fmt.Println()

	// Step 3: Pair them
	fmt.Println("[3/3] Matching pairs...")
	matches, err := analyzer.NewMatcher(settings).Match(regions, frame)
	if err != nil {
		log.Fatalf("Failed to match regions: %v", err)
	}
	for _, m := range matches {
		fmt.Printf("  Pair %d + %d: score=%.2f color=%.2f texture=%.2f size=%.2f (%s)\n",
			m.IndexA, m.IndexB, m.Score, m.ColorScore, m.TextureScore, m.SizeScore, m.Regime)
	}

	rep := report.New(*outPtr, settings)
	rep.Frames = append(rep.Frames, report.FromAnalysis(0, filepath.Base(*outPtr), frame.Width(), frame.Height(), regions, matches))
	if err := report.WriteReport(rep, reportPath); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	fmt.Printf("✓ Report saved to: %s\n\n", reportPath)

	fmt.Println("=== Summary ===")
	fmt.Printf("Regions: %d\n", len(regions))
	fmt.Printf("Pairs: %d\n", len(matches))
	if len(regions) == 2 && len(matches) == 1 {
		fmt.Println("✓ Both rectangles found and paired")
	} else {
		fmt.Println("✗ Expected 2 regions and 1 pair")
		os.Exit(1)
	}
}

// createTestImage draws two identical gray "socks" on a white backdrop
func createTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, white)
		}
	}

	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	for _, r := range []image.Rectangle{
		image.Rect(20, 20, 80, 170),
		image.Rect(120, 220, 180, 370),
	} {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, gray)
			}
		}
	}

	return img
}
