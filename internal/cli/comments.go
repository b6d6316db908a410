package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/showcase/internal/showcase"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

func newCommentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "List or post guestbook comments",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List comments, pinned first then newest first",
		Args:  cobra.NoArgs,
		RunE:  runCommentsList,
	})
	cmd.AddCommand(newCommentsPostCmd())
	return cmd
}

func runCommentsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	comments := types.PartitionPinned(a.fetcher.Comments(cmd.Context()))
	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), comments)
	}

	out := cmd.OutOrStdout()
	if len(comments) == 0 {
		fmt.Fprintln(out, "No comments yet.")
		return nil
	}
	rows := make([][]string, 0, len(comments))
	for _, c := range comments {
		marker := ""
		if c.Pinned {
			marker = "*"
		}
		date := ""
		if !c.CreatedAt.IsZero() {
			date = c.CreatedAt.Format("2006-01-02")
		}
		photo := ""
		if c.Photo != nil {
			photo = "yes"
		}
		rows = append(rows, []string{marker, truncate(c.Name, 24), truncate(c.Comment, 50), photo, date})
	}
	printTable(out, []string{"", "NAME", "COMMENT", "PHOTO", "DATE"}, rows)
	fmt.Fprintf(out, "Total: %d comment(s)\n", len(comments))
	return nil
}

type postFlags struct {
	name    string
	email   string
	comment string
	photo   string
}

func newCommentsPostCmd() *cobra.Command {
	var pf postFlags
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a guestbook comment",
		Long: "Post inserts a comment. An optional photo (an image of at most 5 MiB) is\n" +
			"uploaded first; if the upload fails the comment is posted without it.",
		Example: "  showcase comments post --name Ana --email ana@example.com --comment \"Great work\"\n" +
			"  showcase comments post --name Ana --email ana@example.com --comment Hi --photo me.png",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentsPost(cmd, pf)
		},
	}
	cmd.Flags().StringVar(&pf.name, "name", "", "your name (required)")
	cmd.Flags().StringVar(&pf.email, "email", "", "your email (required)")
	cmd.Flags().StringVar(&pf.comment, "comment", "", "comment text (required)")
	cmd.Flags().StringVar(&pf.photo, "photo", "", "path to an image to attach")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("comment")
	return cmd
}

func runCommentsPost(cmd *cobra.Command, pf postFlags) error {
	in := showcase.CommentInput{
		Name:    pf.name,
		Email:   pf.email,
		Comment: pf.comment,
	}
	if pf.photo != "" {
		photo, err := readPhotoFile(pf.photo)
		if err != nil {
			return err
		}
		in.Photo = photo
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := a.submitter.Submit(cmd.Context(), in)
	if err != nil {
		return err
	}

	if flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), created)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Comment %d posted\n", created.ID)
	if in.Photo != nil && created.Photo == nil {
		fmt.Fprintln(out, "Photo could not be uploaded and was dropped")
	}
	return nil
}

// readPhotoFile loads an image from disk, refusing oversized files without
// reading them.
func readPhotoFile(path string) (*showcase.Photo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if info.Size() > showcase.MaxPhotoSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", types.ErrInvalidPhoto, path, info.Size(), showcase.MaxPhotoSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	return &showcase.Photo{Name: filepath.Base(path), Data: data}, nil
}
