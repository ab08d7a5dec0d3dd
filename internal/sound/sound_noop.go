//go:build ci

package sound

import "github.com/palemoky/cardarena/internal/client"

// SoundManager CI 环境下没有音频设备，全部为空操作
type SoundManager struct{}

func NewSoundManager(string) *SoundManager {
	return &SoundManager{}
}

func (sm *SoundManager) Init() error {
	return nil
}

func (sm *SoundManager) Play(name string) {
	// No-op
}

func (sm *SoundManager) Loaded() int {
	return 0
}

func (sm *SoundManager) Notify(client.Notice) {
	// No-op
}

func (sm *SoundManager) Close() {
	// No-op
}
