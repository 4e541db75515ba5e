package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ivlev/sockpair/internal/config"
	"github.com/ivlev/sockpair/internal/engine"
	"github.com/ivlev/sockpair/internal/logger"
	"github.com/ivlev/sockpair/internal/report"
	"github.com/ivlev/sockpair/internal/source"
	"github.com/ivlev/sockpair/internal/system"
)

// BuildVersion is set with -ldflags "-X main.BuildVersion=..."
var BuildVersion = "dev"

func main() {
	// Создаем нужные директории, если их нет
	dirs := []string{"input/frames", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	defaults := config.Default()

	configPtr := flag.String("config", "", "YAML-файл конфигурации (флаги имеют приоритет)")
	inputPtr := flag.String("input", "", "Путь к изображению, папке с кадрами или PDF (по умолчанию: самый свежий файл в input/frames/)")
	reportPtr := flag.String("report", "", "Путь к YAML-отчету (если пусто, генерируется автоматически в output/)")
	workersPtr := flag.Int("workers", defaults.Workers, "Потоки (0 - по числу ядер и свободной памяти)")
	dpiPtr := flag.Int("dpi", defaults.DPI, "DPI для страниц PDF")
	maxDimPtr := flag.Int("max-dim", defaults.MaxDimension, "Максимальная сторона кадра перед анализом (0 - без уменьшения)")
	timeoutPtr := flag.Duration("timeout", defaults.FrameTimeout, "Лимит времени на анализ одного кадра (0 - без лимита)")
	detectorPtr := flag.String("detector", defaults.Detector, "Детектор: color, surface")
	surfacePtr := flag.String("surface", "", "Точка образца поверхности: x,y[,size] (для -detector surface)")
	gridPtr := flag.Int("grid", defaults.Settings.GridSize, "Шаг сетки поиска семян")
	minSizePtr := flag.Int("min-size", defaults.Settings.MinRegionSize, "Минимальная площадь региона (пикселей)")
	maxSizePtr := flag.Int("max-size", defaults.Settings.MaxRegionSize, "Максимальная площадь региона (пикселей)")
	colorPtr := flag.Float64("color-threshold", defaults.Settings.ColorThreshold, "Порог цветового расстояния")
	logLevelPtr := flag.String("log-level", defaults.LogLevel, "Уровень логов: debug, info, warn, error, off")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")

	flag.Parse()

	cfg := defaults
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка конфигурации: %v", err)
		}
		cfg = loaded
	}

	// Явно заданные флаги перекрывают файл конфигурации
	var surfaceErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "report":
			cfg.ReportPath = *reportPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "max-dim":
			cfg.MaxDimension = *maxDimPtr
		case "timeout":
			cfg.FrameTimeout = *timeoutPtr
		case "detector":
			cfg.Detector = *detectorPtr
		case "surface":
			cfg.Surface, surfaceErr = parseSurface(*surfacePtr)
		case "grid":
			cfg.Settings.GridSize = *gridPtr
		case "min-size":
			cfg.Settings.MinRegionSize = *minSizePtr
		case "max-size":
			cfg.Settings.MaxRegionSize = *maxSizePtr
		case "color-threshold":
			cfg.Settings.ColorThreshold = *colorPtr
		case "log-level":
			cfg.LogLevel = *logLevelPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})
	if surfaceErr != nil {
		log.Fatalf("[-] Ошибка: %v", surfaceErr)
	}
	cfg.BuildVersion = BuildVersion

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
	appLog := logger.NewConsole(os.Stderr, level)

	if cfg.InputPath == "" {
		latest, err := system.FindLatest("input/frames", append(system.ImageExtensions, ".pdf"))
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите кадры в input/frames/", err)
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", cfg.InputPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	src, err := source.Open(cfg.InputPath)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	if strings.HasSuffix(strings.ToLower(cfg.InputPath), ".pdf") {
		system.InitResourceLimits(logger.Component(appLog, "system"))
	}

	if cfg.ReportPath == "" {
		cfg.ReportPath = report.GenerateReportPath("output")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch := engine.NewBatch(cfg, src, logger.Component(appLog, "engine"))
	rep, err := batch.Run(ctx)
	if err != nil {
		log.Fatalf("[-] Ошибка обработки: %v", err)
	}

	for _, fr := range rep.Frames {
		if fr.Error != "" {
			fmt.Printf("[!] Кадр %d (%s): %s\n", fr.Index+1, fr.Source, fr.Error)
			continue
		}
		fmt.Printf("[>] Кадр %d (%s): регионов %d, пар %d\n", fr.Index+1, fr.Source, len(fr.Regions), len(fr.Pairs))
		for _, p := range fr.Pairs {
			fmt.Printf("    #%d + #%d  score=%.2f (%s)\n", p.A, p.B, p.Score, p.Regime)
		}
	}

	if err := report.WriteReport(rep, cfg.ReportPath); err != nil {
		log.Fatalf("[-] Ошибка записи отчета: %v", err)
	}

	frames, regions, pairs := rep.Totals()
	fmt.Printf("[*] Кадров: %d | Регионов: %d | Пар: %d\n", frames, regions, pairs)
	fmt.Printf("[+++] Успех! Отчет: %s\n", cfg.ReportPath)
}

// parseSurface reads "x,y" or "x,y,size"; the patch defaults to 30 pixels
func parseSurface(s string) (*config.SurfacePoint, error) {
	p := &config.SurfacePoint{Size: 30}
	var n int
	var err error
	if strings.Count(s, ",") == 2 {
		n, err = fmt.Sscanf(s, "%d,%d,%d", &p.X, &p.Y, &p.Size)
	} else {
		n, err = fmt.Sscanf(s, "%d,%d", &p.X, &p.Y)
	}
	if err != nil || n < 2 {
		return nil, fmt.Errorf("неверная точка поверхности %q, ожидается x,y[,size]", s)
	}
	return p, nil
}
