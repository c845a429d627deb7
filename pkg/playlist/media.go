package playlist

import (
	"errors"
	"time"

	"github.com/decker502/carnival/pkg/config"
)

var (
	// ErrPlaybackRejected 平台拒绝播放（自动播放限制），需要等待用户手势后重试
	ErrPlaybackRejected = errors.New("playback rejected: user gesture required")

	// ErrEmptyPlaylist 播放列表为空
	ErrEmptyPlaylist = errors.New("playlist must contain at least one track")

	// ErrTrackUnavailable 曲目文件无法加载
	ErrTrackUnavailable = errors.New("track unavailable")
)

// Track 曲目描述
type Track struct {
	Title  string
	Artist string
	Source string
	Icon   string
}

// TracksFromConfig 由配置生成曲目列表
func TracksFromConfig(cfgs []config.TrackConfig) []Track {
	tracks := make([]Track, 0, len(cfgs))
	for _, c := range cfgs {
		tracks = append(tracks, Track{Title: c.Title, Artist: c.Artist, Source: c.Source, Icon: c.Icon})
	}
	return tracks
}

// Media 可播放的音频资源
// 同一时刻只绑定一首曲目，由 Controller 独占。
type Media interface {
	// Load 绑定曲目并把播放位置重置到开头
	Load(track Track) error
	// Play 开始或继续播放；平台拒绝时返回 ErrPlaybackRejected
	Play() error
	Pause()
	Position() time.Duration
	// Duration 曲目总时长，未知时返回 0
	Duration() time.Duration
	// Ended 当前曲目是否已自然播放结束
	Ended() bool
	SetVolume(volume float64)
	Close() error
}
