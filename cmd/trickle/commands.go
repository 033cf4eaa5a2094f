package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/trickle"
	bt "github.com/fwojciec/trickle/bubbletea"
	"github.com/fwojciec/trickle/chat"
	"github.com/fwojciec/trickle/pace"
	"github.com/fwojciec/trickle/toml"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// cli carries state shared by the command tree.
type cli struct {
	env   environment
	flags overrides
	home  string
	out   io.Writer
}

func newRootCmd(env environment) *cobra.Command {
	return newCLI(env, homeDir(), os.Stdout).rootCmd()
}

func newCLI(env environment, home string, out io.Writer) *cli {
	return &cli{env: env, home: home, out: out}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trickle",
		Short:         "Chat with a local model proxy from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.ConfigPath, "config", "", "Path to settings file (default ~/.trickle/config.toml)")
	pf.StringVar(&c.flags.Endpoint, "endpoint", "", "Proxy base URL")
	pf.StringVar(&c.flags.Model, "model", "", "Model ID")
	pf.StringVar(&c.flags.APIKey, "api-key", "", "API key")
	pf.StringVar(&c.flags.Provider, "provider", "", "Provider: anthropic, gemini")
	pf.StringVar(&c.flags.Store, "store", "", "Store driver: json, sqlite")

	chatCmd := c.chatCmd()
	root.RunE = chatCmd.RunE
	root.Flags().AddFlagSet(chatCmd.Flags())

	root.AddCommand(
		chatCmd,
		c.askCmd(),
		c.listCmd(),
		c.renameCmd(),
		c.rmCmd(),
		c.retryCmd(),
		c.titleCmd(),
		c.modelsCmd(),
		c.personasCmd(),
		c.configCmd(),
	)
	return root
}

func (c *cli) configPath() string {
	if c.flags.ConfigPath != "" {
		return c.flags.ConfigPath
	}
	return defaultConfigPath(c.home)
}

// config loads the settings file and applies env and flag overrides.
func (c *cli) config() (trickle.Config, error) {
	file, err := toml.Load(c.configPath())
	if err != nil {
		return trickle.Config{}, err
	}
	return resolveConfig(file, c.env, c.flags, c.home), nil
}

// withApp runs fn with a wired app.
func (c *cli) withApp(ctx context.Context, fn func(a *app) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func (c *cli) chatCmd() *cobra.Command {
	var convID, personaID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chat TUI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(a *app) error {
				var conv trickle.Conversation
				if convID != "" {
					var err error
					if conv, err = a.store.Get(ctx, convID); err != nil {
						return err
					}
				}
				persona, err := lookupPersona(personaID)
				if err != nil {
					return err
				}
				m := bt.New(a.svc, a.store, conv, bt.Options{
					Model:    a.cfg.Model,
					Persona:  persona,
					Theme:    trickle.DefaultTheme(),
					Interval: a.cfg.TickInterval(),
				})
				if err := bt.Run(ctx, m); err != nil {
					return fmt.Errorf("TUI: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&convID, "conversation", "", "Conversation ID to resume")
	cmd.Flags().StringVar(&personaID, "persona", "", "Persona for a new conversation")
	return cmd
}

func (c *cli) askCmd() *cobra.Command {
	var personaID string
	var noSave bool
	var images []string
	cmd := &cobra.Command{
		Use:   "ask PROMPT...",
		Short: "Stream one answer to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			persona, err := lookupPersona(personaID)
			if err != nil {
				return err
			}
			attachments, err := readImages(images)
			if err != nil {
				return err
			}
			msg := trickle.NewUserMessage(strings.Join(args, " "), attachments...)
			return c.withApp(ctx, func(a *app) error {
				if noSave {
					conv := trickle.NewConversation(msg, persona)
					req := chat.BuildRequest(conv, a.cfg.Model, a.cfg.MaxTokens)
					return a.printAnswer(ctx, c.out, func(ctx context.Context, p *pace.Pacer) error {
						_, err := a.ctrl.SendPaced(ctx, req, p, nil)
						return err
					})
				}
				conv, err := a.svc.NewConversation(ctx, msg, persona)
				if err != nil {
					return err
				}
				return a.printAnswer(ctx, c.out, func(ctx context.Context, p *pace.Pacer) error {
					_, err := a.svc.Send(ctx, conv.ID, a.cfg.Model, p, nil)
					return err
				})
			})
		},
	}
	cmd.Flags().StringVar(&personaID, "persona", "", "Persona ID")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the exchange")
	cmd.Flags().StringSliceVar(&images, "image", nil, "Image file to attach (repeatable)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				convs, err := a.store.List(cmd.Context())
				if err != nil {
					return err
				}
				return writeConversations(c.out, convs)
			})
		},
	}
}

func (c *cli) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID TITLE...",
		Short: "Rename a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				return a.store.Rename(cmd.Context(), args[0], strings.Join(args[1:], " "))
			})
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID...",
		Short: "Delete conversations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				for _, id := range args {
					if err := a.store.Delete(cmd.Context(), id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func (c *cli) retryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry ID",
		Short: "Regenerate the last reply of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(a *app) error {
				return a.printAnswer(ctx, c.out, func(ctx context.Context, p *pace.Pacer) error {
					_, err := a.svc.Retry(ctx, args[0], a.cfg.Model, p, nil)
					return err
				})
			})
		},
	}
}

func (c *cli) titleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "title ID",
		Short: "Generate and store a title for a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				title, err := a.svc.SynthesizeTitle(cmd.Context(), args[0], a.cfg.Model)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, title)
				return nil
			})
		},
	}
}

func (c *cli) modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			writeModels(c.out, trickle.AvailableModels(), cfg.Model)
			return nil
		},
	}
}

func (c *cli) personasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List built-in personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writePersonas(c.out, trickle.DefaultPersonas())
			return nil
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if save {
				if err := toml.Save(c.configPath(), cfg); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Saved %s\n", c.configPath())
				return nil
			}
			return toml.Write(c.out, cfg)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Write the effective settings to the settings file")
	return cmd
}

func lookupPersona(id string) (*trickle.Persona, error) {
	if id == "" {
		return nil, nil
	}
	p, err := trickle.FindPersona(id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// readImages loads attachment files, sniffing their MIME type.
func readImages(paths []string) ([]trickle.ContentBlock, error) {
	var blocks []trickle.ContentBlock
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		mime := http.DetectContentType(data)
		if !strings.HasPrefix(mime, "image/") {
			return nil, fmt.Errorf("%s is not an image (%s): %w", path, mime, fs.ErrInvalid)
		}
		blocks = append(blocks, trickle.ImageBlock{Data: data, MimeType: mime})
	}
	return blocks, nil
}

const titleWidth = 50

func writeConversations(w io.Writer, convs []trickle.Conversation) error {
	if len(convs) == 0 {
		_, err := fmt.Fprintln(w, "No conversations.")
		return err
	}
	for _, conv := range convs {
		title := runewidth.FillRight(runewidth.Truncate(conv.Title, titleWidth, "..."), titleWidth)
		if _, err := fmt.Fprintf(w, "%s  %s  %3d  %s\n", conv.ID, title, len(conv.Messages), conv.UpdatedAt.Local().Format(time.DateTime)); err != nil {
			return err
		}
	}
	return nil
}

func writeModels(w io.Writer, models []trickle.Model, current string) {
	for _, m := range models {
		mark := " "
		if m.ID == current {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, runewidth.FillRight(m.ID, 28), m.Name)
	}
}

func writePersonas(w io.Writer, personas []trickle.Persona) {
	for _, p := range personas {
		fmt.Fprintf(w, "%s  %s  %s\n", runewidth.FillRight(p.ID, 16), runewidth.FillRight(p.Name, 24), p.Description)
	}
}
