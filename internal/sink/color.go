package sink

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/sys/unix"
)

// CategoryStyles maps each extension Category to a lipgloss style, the
// colourized-output analogue of the teacher's line/filename/match Styles.
type CategoryStyles struct {
	Default    lipgloss.Style
	Archive    lipgloss.Style
	Image      lipgloss.Style
	AudioVideo lipgloss.Style
	Document   lipgloss.Style
	Executable lipgloss.Style
	Source     lipgloss.Style
	Database   lipgloss.Style
	Directory  lipgloss.Style
}

// For returns the style for a category.
func (s CategoryStyles) For(c Category) lipgloss.Style {
	switch c {
	case CategoryArchive:
		return s.Archive
	case CategoryImage:
		return s.Image
	case CategoryAudioVideo:
		return s.AudioVideo
	case CategoryDocument:
		return s.Document
	case CategoryExecutable:
		return s.Executable
	case CategorySource:
		return s.Source
	case CategoryDatabase:
		return s.Database
	default:
		return s.Default
	}
}

// NewStyles creates the default colour scheme, chosen to resemble common
// LS_COLORS conventions: green executables, red archives, magenta media.
// It pins lipgloss to the ANSI colour profile, so the styles colour their
// output even when stdout is not a terminal (--color=always).
func NewStyles() CategoryStyles {
	lipgloss.SetColorProfile(termenv.ANSI)
	return CategoryStyles{
		Default:    lipgloss.NewStyle(),
		Archive:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Image:      lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		AudioVideo: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		Document:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Executable: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		Source:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Database:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Directory:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
	}
}

// NoStyles returns styles with no colouring, used when colour is disabled.
func NoStyles() CategoryStyles {
	plain := lipgloss.NewStyle()
	return CategoryStyles{
		Default: plain, Archive: plain, Image: plain, AudioVideo: plain,
		Document: plain, Executable: plain, Source: plain, Database: plain,
		Directory: plain,
	}
}

// IsTerminal checks if the given file descriptor is a terminal using ioctl.
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}

// StdoutIsTerminal returns true if stdout is a terminal.
func StdoutIsTerminal() bool {
	return IsTerminal(os.Stdout.Fd())
}
