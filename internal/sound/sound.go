//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/palemoky/cardarena/internal/client"
	"github.com/palemoky/cardarena/internal/logger"
)

// SoundManager 预加载音效并通过扬声器播放
type SoundManager struct {
	dir     string
	buffers map[string]*beep.Buffer
	enabled bool
}

// NewSoundManager dir 为音效目录，空串时使用 DefaultDir
func NewSoundManager(dir string) *SoundManager {
	if dir == "" {
		dir = DefaultDir
	}
	return &SoundManager{
		dir:     dir,
		buffers: make(map[string]*beep.Buffer),
		enabled: false,
	}
}

// Init 初始化扬声器并加载音效目录
func (sm *SoundManager) Init() error {
	sampleRate := beep.SampleRate(44100)
	// Init speaker with smaller buffer for lower latency
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	sm.enabled = true

	// Load sounds from assets directory
	if err := sm.loadSoundFiles(sampleRate); err != nil {
		return err
	}

	return nil
}

// loadSoundFiles 加载音效目录下的 mp3 / wav，文件名（去扩展名）即音效名
func (sm *SoundManager) loadSoundFiles(sampleRate beep.SampleRate) error {
	soundDir := sm.dir
	files, err := os.ReadDir(soundDir)
	if err != nil {
		// It's okay if directory doesn't exist, just no sounds
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		ext := strings.ToLower(filepath.Ext(name))
		baseName := strings.TrimSuffix(name, filepath.Ext(name))

		if ext != ".mp3" && ext != ".wav" {
			continue
		}

		if err := sm.loadSoundFile(soundDir, name, baseName, ext, sampleRate); err != nil {
			// 单个文件失败不影响其他音效
			logger.LogError("load sound %s: %v", name, err)
			continue
		}
	}

	return nil
}

// loadSoundFile loads a single sound file into the buffer
func (sm *SoundManager) loadSoundFile(soundDir, name, baseName, ext string, sampleRate beep.SampleRate) error {
	path := filepath.Join(soundDir, name)
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	}

	if err != nil {
		return err
	}
	defer func() { _ = streamer.Close() }()

	// Resample if necessary
	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	// Use standard stereo format
	standardFormat := beep.Format{
		SampleRate:  sampleRate,
		NumChannels: 2,
		Precision:   4,
	}

	buffer := beep.NewBuffer(standardFormat)
	buffer.Append(resampled)

	sm.buffers[baseName] = buffer
	return nil
}

// Play 播放已加载的音效，未加载或未初始化时静默忽略
func (sm *SoundManager) Play(name string) {
	if !sm.enabled {
		return
	}

	buffer, ok := sm.buffers[name]
	if !ok {
		// Silent failure if sound not found
		return
	}

	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

// Loaded 已加载的音效数量
func (sm *SoundManager) Loaded() int {
	return len(sm.buffers)
}

// Notify 会话通知对应的提示音，可作为 client.Observer 使用
func (sm *SoundManager) Notify(n client.Notice) {
	if name, ok := ForNotice(n); ok {
		sm.Play(name)
	}
}

// Close 停止播放
func (sm *SoundManager) Close() {
	sm.enabled = false
}
