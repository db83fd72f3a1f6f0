package meter

import (
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func (m *Meter) startProgress(total int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bar != nil {
		m.bar.SetTotal(total, false)
		return
	}
	m.progress = mpb.New(mpb.WithOutput(m.progressOut), mpb.WithWidth(64))
	m.bar = m.progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(m.componentMetadata.Name+": "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.AverageETA(decor.ET_STYLE_GO),
		),
	)
}

func (m *Meter) advance(delta int) {
	m.mu.Lock()
	bar := m.bar
	m.mu.Unlock()
	if bar != nil {
		bar.IncrBy(delta)
	}
}

// stopProgress completes the bar at its current count and waits for the final render.
func (m *Meter) stopProgress() {
	m.mu.Lock()
	p, bar := m.progress, m.bar
	m.mu.Unlock()
	if p == nil {
		return
	}
	bar.SetTotal(-1, true)
	p.Wait()
}
