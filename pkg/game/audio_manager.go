package game

import (
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/decker502/carnival/pkg/playlist"
)

// endTolerance 判定自然结束时允许的位置误差
const endTolerance = 50 * time.Millisecond

// AudioManager 迷你播放器的音频资源
// 职责：
//   - 持有唯一的 audio.Player，绑定当前曲目
//   - 把音频上下文未就绪（浏览器自动播放限制）报告为 playlist.ErrPlaybackRejected
//   - 检测曲目自然结束
//
// 实现 playlist.Media，由 playlist.Controller 独占。
type AudioManager struct {
	resourceManager *ResourceManager
	player          *audio.Player
	track           playlist.Track
	duration        time.Duration
	volume          float64
	playing         bool // 最近一次是 Play 而不是 Pause
}

// NewAudioManager 创建音频资源
//
// 参数：
//   - rm: ResourceManager 实例（提供音频上下文和解码）
//   - volume: 初始音量 (0.0 ~ 1.0)
func NewAudioManager(rm *ResourceManager, volume float64) *AudioManager {
	return &AudioManager{
		resourceManager: rm,
		volume:          volume,
	}
}

// Load 绑定曲目，成功后才释放上一首的播放器
// 加载失败时上一首保持绑定。
func (am *AudioManager) Load(track playlist.Track) error {
	stream, err := am.resourceManager.LoadAudioStream(track.Source)
	if err != nil {
		return err
	}

	player, err := am.resourceManager.AudioContext().NewPlayer(stream)
	if err != nil {
		return fmt.Errorf("failed to create audio player for %s: %w", track.Source, err)
	}
	player.SetVolume(am.volume)

	if err := am.release(); err != nil {
		log.Printf("[AudioManager] Warning: %v", err)
	}

	seconds := StreamDuration(stream.Length(), am.resourceManager.AudioContext().SampleRate())
	am.player = player
	am.track = track
	am.duration = time.Duration(seconds * float64(time.Second))

	log.Printf("[AudioManager] Loaded %s (%.1fs)", track.Source, seconds)
	return nil
}

// Play 开始或继续播放
// 音频上下文尚未就绪时返回 playlist.ErrPlaybackRejected
func (am *AudioManager) Play() error {
	if am.player == nil {
		return fmt.Errorf("no track loaded")
	}
	if !am.resourceManager.AudioContext().IsReady() {
		return playlist.ErrPlaybackRejected
	}
	am.player.Play()
	am.playing = true
	return nil
}

// Pause 暂停播放
func (am *AudioManager) Pause() {
	if am.player != nil {
		am.player.Pause()
	}
	am.playing = false
}

// Position 当前播放位置
func (am *AudioManager) Position() time.Duration {
	if am.player == nil {
		return 0
	}
	return am.player.Position()
}

// Duration 曲目总时长
func (am *AudioManager) Duration() time.Duration {
	return am.duration
}

// Ended 播放器自行停止且位置到达结尾
func (am *AudioManager) Ended() bool {
	if am.player == nil || !am.playing || am.player.IsPlaying() {
		return false
	}
	return am.duration == 0 || am.player.Position() >= am.duration-endTolerance
}

// SetVolume 设置音量，立即应用到当前播放器
func (am *AudioManager) SetVolume(volume float64) {
	am.volume = volume
	if am.player != nil {
		am.player.SetVolume(volume)
	}
}

// Volume 返回当前音量
func (am *AudioManager) Volume() float64 {
	return am.volume
}

// Close 释放播放器
func (am *AudioManager) Close() error {
	return am.release()
}

func (am *AudioManager) release() error {
	am.playing = false
	if am.player == nil {
		return nil
	}
	err := am.player.Close()
	am.player = nil
	am.duration = 0
	if err != nil {
		return fmt.Errorf("failed to close audio player for %s: %w", am.track.Source, err)
	}
	return nil
}
