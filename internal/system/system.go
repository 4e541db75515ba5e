package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ImageExtensions are the frame formats the image source can decode
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"}

// Буферы на кадр: исходное изображение, подготовленный RGBA и сетка посещений
const frameBufferFactor = 3

// InitResourceLimits поднимает лимит открытых файлов: PDF-источник
// открывает документ заново в каждом воркере.
func InitResourceLimits(log zerolog.Logger) {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Warn().Err(err).Msg("не удалось получить лимит файлов")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Warn().Err(err).Msg("не удалось установить лимит файлов")
	} else {
		log.Debug().Uint64("nofile", uint64(rLimit.Cur)).Msg("лимит открытых файлов увеличен")
	}
}

// WorkerLimit возвращает число воркеров для обработки кадров.
// requested <= 0 означает "по числу логических ядер". Результат дополнительно
// ограничивается свободной памятью из расчета frameBytes на кадр.
func WorkerLimit(requested int, frameBytes uint64) int {
	cpus, err := cpu.Counts(true)
	if err != nil || cpus < 1 {
		cpus = runtime.NumCPU()
	}

	var available uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		available = vm.Available
	}

	return limitWorkers(requested, cpus, available, frameBytes)
}

func limitWorkers(requested, cpus int, available, frameBytes uint64) int {
	n := requested
	if n <= 0 {
		n = cpus
	}

	// Нет данных о памяти или размере кадра: доверяем запросу
	if available == 0 || frameBytes == 0 {
		return max(1, n)
	}

	// Оставляем половину свободной памяти системе
	byMemory := available / 2 / (frameBytes * frameBufferFactor)
	if byMemory < uint64(n) {
		n = int(byMemory)
	}
	return max(1, n)
}

// FindLatest возвращает самый свежий файл в dir с одним из расширений exts
func FindLatest(dir string, exts []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %s", dir, strings.Join(exts, ", "))
	}

	return latestFile, nil
}

// FindLatestImage ищет самое свежее изображение. Если path указывает на
// файл, поиск идет в его директории.
func FindLatestImage(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	searchDir := path
	if !fi.IsDir() {
		searchDir = filepath.Dir(path)
	}

	return FindLatest(searchDir, ImageExtensions)
}

func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
