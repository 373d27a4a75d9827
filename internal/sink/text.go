package sink

// TextFormatter writes one path per Result, optionally colourized by
// extension category the way `ls --color`/fd colourize matches.
type TextFormatter struct {
	styles   CategoryStyles
	useColor bool
}

// NewTextFormatter creates a TextFormatter. When useColor is false, styles
// are ignored and paths are written plain.
func NewTextFormatter(styles CategoryStyles, useColor bool) *TextFormatter {
	return &TextFormatter{styles: styles, useColor: useColor}
}

func (f *TextFormatter) Format(buf []byte, result Result, separator byte) []byte {
	if f.useColor {
		style := f.styles.For(result.Category)
		if result.IsDir {
			style = f.styles.Directory
		}
		buf = append(buf, style.Render(result.Path)...)
	} else {
		buf = append(buf, result.Path...)
	}
	buf = append(buf, separator)
	return buf
}

var _ Formatter = (*TextFormatter)(nil)
