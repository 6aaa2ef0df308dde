package extract

import "io"

// ProgressFunc 接收 0-100 的读取进度。
type ProgressFunc func(percent int)

// progressReader reports byte-level progress while the underlying payload is
// read. Decoder-internal progress is not observable, so percentages may jump
// from read completion straight to finished.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	lastPct  int
	progress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, progress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, lastPct: -1, progress: progress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.progress == nil || p.total <= 0 {
		return
	}
	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct != p.lastPct {
		p.lastPct = pct
		p.progress(pct)
	}
}
