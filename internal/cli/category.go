package cli

import (
	"fmt"
	"strings"

	"github.com/runoshun/tasktree/internal/command"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/spf13/cobra"
)

// newCategoryCommand creates the category command.
func newCategoryCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
		Long:  `Create categories and assign tasks to them. Categories form a tree like tasks.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newCategoryAddCommand(s))
	cmd.AddCommand(newCategoryListCommand(s))
	cmd.AddCommand(newCategoryAssignCommand(s, true))
	cmd.AddCommand(newCategoryAssignCommand(s, false))

	return cmd
}

func newCategoryAddCommand(s *session) *cobra.Command {
	var parentName string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return fmt.Errorf("category name must not be empty")
			}
			if _, err := s.findCategory(name); err == nil {
				return fmt.Errorf("category %q already exists", name)
			}

			var (
				op       command.Command
				category *domain.Category
			)
			if parentName == "" {
				add := command.NewCategory(s.c.Bus, s.c.Categories, name)
				op, category = add, add.Items()[0]
			} else {
				parent, err := s.findCategory(parentName)
				if err != nil {
					return err
				}
				add := command.NewSubCategory(s.c.Bus, s.c.Categories, parent, name)
				op, category = add, add.Items()[0]
			}
			if err := s.apply(op); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created category %s: %s\n", shortID(category.ID()), category.Subject())
			return nil
		},
	}

	cmd.Flags().StringVar(&parentName, "parent", "", "Parent category name")

	return cmd
}

func newCategoryListCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the category tree with task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			roots := domain.Live(s.c.Categories.RootItems())
			if len(roots) == 0 {
				_, _ = fmt.Fprintln(w, "No categories.")
				return nil
			}
			var walk func(categories []*domain.Category, depth int)
			walk = func(categories []*domain.Category, depth int) {
				for _, c := range categories {
					_, _ = fmt.Fprintf(w, "%s %s%s %s\n",
						s.styles.ID.Render(shortID(c.ID())),
						strings.Repeat("  ", depth),
						s.styles.Category.Render(c.Subject()),
						s.styles.Detail.Render(fmt.Sprintf("(%d)", len(domain.Live(c.Categorizables())))),
					)
					walk(domain.Live(c.ChildCategories(false)), depth+1)
				}
			}
			walk(roots, 0)
			return nil
		},
	}
}

// newCategoryAssignCommand creates "assign" or, with assign unset,
// "unassign".
func newCategoryAssignCommand(s *session, assign bool) *cobra.Command {
	use, short := "assign", "Add tasks to a category"
	if !assign {
		use, short = "unassign", "Remove tasks from a category"
	}

	return &cobra.Command{
		Use:   use + " <category> <task-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := s.findCategory(args[0])
			if err != nil {
				return err
			}
			tasks, err := s.findTasks(args[1:])
			if err != nil {
				return err
			}
			op := command.NewAddCategory(category, tasks...)
			if !assign {
				op = command.NewRemoveCategory(category, tasks...)
			}
			if err := s.apply(op); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %d task(s)\n", len(tasks))
			return nil
		},
	}
}
