package cli

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sizemap/pkg/core/item"
	"github.com/matzehuels/sizemap/pkg/pipeline"
)

const barWidth = 20

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listFolderStyle   = lipgloss.NewStyle().Foreground(colorBlue)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the interactive size browser.
func (c *CLI) browseCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "browse <du-file>",
		Short: "Explore a du report interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("root") {
				root = c.Config.Render.Root
			}

			data, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			entries, err := pipeline.Parse(data)
			if err != nil {
				return err
			}
			tree, err := pipeline.BuildTree(entries, pipeline.Options{Root: root})
			if err != nil {
				return err
			}

			p := tea.NewProgram(newBrowseModel(tree), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&root, "root", pipeline.DefaultRoot, "path du was run on")
	return cmd
}

// =============================================================================
// browseModel - folder-by-folder size listing
// =============================================================================

type browseModel struct {
	path   []*item.Folder // root first, current folder last
	items  []item.Item    // children of the current folder, largest first
	cursor int
	offset int
	height int
}

func newBrowseModel(root *item.Folder) browseModel {
	m := browseModel{height: 15}
	return m.enter(root)
}

func (m browseModel) current() *item.Folder { return m.path[len(m.path)-1] }

// enter makes f the current folder.
func (m browseModel) enter(f *item.Folder) browseModel {
	m.path = append(slices.Clip(m.path), f)
	m.items = sortedChildren(f)
	m.cursor, m.offset = 0, 0
	return m
}

// leave returns to the parent folder with the cursor on the folder just left.
func (m browseModel) leave() browseModel {
	if len(m.path) == 1 {
		return m
	}
	left := m.current()
	m.path = m.path[:len(m.path)-1]
	m.items = sortedChildren(m.current())
	m.cursor, m.offset = 0, 0
	for i, it := range m.items {
		if it == item.Item(left) {
			m.cursor = i
			break
		}
	}
	return m.scrolled()
}

// scrolled keeps the cursor inside the visible window.
func (m browseModel) scrolled() browseModel {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m
}

func sortedChildren(f *item.Folder) []item.Item {
	kids := f.Children()
	slices.SortStableFunc(kids, func(a, b item.Item) int {
		return cmp.Compare(b.Size(), a.Size())
	})
	return kids
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(len(m.items)-1, 0)
		case "enter", "right", "l":
			if m.cursor < len(m.items) {
				if f, ok := m.items[m.cursor].(*item.Folder); ok && f.Len() > 0 {
					return m.enter(f), nil
				}
			}
		case "backspace", "left", "h":
			return m.leave(), nil
		}
		return m.scrolled(), nil
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		return m.scrolled(), nil
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder
	cur := m.current()

	b.WriteString(StyleTitle.Render(cur.Name()))
	b.WriteString("  ")
	b.WriteString(StyleNumber.Render(humanize.Bytes(uint64(cur.Size()))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  ⌫ back  q quit"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(listDimStyle.Render("(empty)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.offset+m.height, len(m.items))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		it := m.items[i]
		marker := "  "
		if i == m.cursor {
			marker = "▸ "
		}
		name := path.Base(it.Name())
		if _, ok := it.(*item.Folder); ok {
			name += "/"
		}
		rows = append(rows, []string{
			marker,
			humanize.Bytes(uint64(it.Size())),
			shareBar(it.Size(), cur.Size()),
			name,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Size", "Share", "Name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
			}
			i := m.offset + row
			if i >= len(m.items) {
				return lipgloss.NewStyle()
			}
			switch {
			case i == m.cursor:
				return listSelectedStyle.Padding(0, 1)
			case col == 3 && isFolder(m.items[i]):
				return listFolderStyle.Padding(0, 1)
			default:
				return listNormalStyle.Padding(0, 1)
			}
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(m.items) > m.height {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d-%d of %d", m.offset+1, end, len(m.items))))
		b.WriteString("\n")
	}
	return b.String()
}

func isFolder(it item.Item) bool {
	_, ok := it.(*item.Folder)
	return ok
}

// shareBar draws size as a fraction of total, e.g. "██████░░░░ 60%".
func shareBar(size, total int64) string {
	share := 0.0
	if total > 0 {
		share = float64(size) / float64(total)
	}
	filled := int(share*barWidth + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + fmt.Sprintf(" %3.0f%%", share*100)
}
