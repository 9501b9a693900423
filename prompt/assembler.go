package prompt

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	"github.com/poiesic/grounder/core"
)

const (
	// DefaultMaxTokens is the token budget for an assembled prompt.
	DefaultMaxTokens = 1024

	// encodingName selects the BPE vocabulary used for token counting.
	encodingName = "cl100k_base"
)

const promptTemplate = `You are an assistant that answers questions using only the provided context.

<context>
%s
</context>

<rules>
- Answer using only information from the context.
- If the context does not contain the answer, say "I cannot find this information in the documents."
- Be concise and factual.
</rules>

<question>
%s
</question>`

// passageSeparator joins context passages inside the context section.
const passageSeparator = "\n\n"

// Prompt is an assembled generation prompt together with the chunks whose
// text actually made it into the context section. Source attribution must
// come from Included, never from the full retrieval result.
type Prompt struct {
	Text     string
	Included []*core.Chunk
}

// Assembler builds generation prompts from retrieved chunks under a token
// budget.
type Assembler struct {
	maxTokens int
	encoding  *tiktoken.Tiktoken
	logger    *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler) error

// WithMaxTokens sets the token budget for assembled prompts.
// Default is DefaultMaxTokens.
func WithMaxTokens(maxTokens int) Option {
	return func(a *Assembler) error {
		if maxTokens <= 0 {
			return fmt.Errorf("%w: max tokens %d must be positive", core.ErrInvalidInput, maxTokens)
		}
		a.maxTokens = maxTokens
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// bpeLoaderOnce installs the bundled BPE vocabulary so token counting never
// reaches out to the network.
var bpeLoaderOnce sync.Once

// NewAssembler creates a prompt assembler.
func NewAssembler(opts ...Option) (*Assembler, error) {
	bpeLoaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEncodingUnavailable, err)
	}

	a := &Assembler{
		maxTokens: DefaultMaxTokens,
		encoding:  encoding,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// CountTokens returns the number of tokens in text.
func (a *Assembler) CountTokens(text string) int {
	return len(a.encoding.Encode(text, nil, nil))
}

// Assemble builds a grounded prompt from the query and retrieved chunks.
//
// Chunks are added in rank order until the budget is exhausted; the
// lowest-ranked passages are dropped first. The top-ranked chunk is always
// included, even when it alone exceeds the budget, so a grounded query never
// degrades into an empty context. Chunk text and query are escaped so
// document content can't forge the prompt's structural tags.
func (a *Assembler) Assemble(query string, chunks []*core.ScoredChunk) (*Prompt, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}

	escapedQuery := escapeTags(query)
	base := a.CountTokens(fmt.Sprintf(promptTemplate, "", escapedQuery))

	var passages []string
	var included []*core.Chunk
	budget := base

	for i, scored := range chunks {
		passage := escapeTags(scored.Chunk.Text)
		cost := a.CountTokens(passage) + a.CountTokens(passageSeparator)

		if budget+cost > a.maxTokens && i > 0 {
			a.logger.Debug("prompt budget reached, dropping lower-ranked passages",
				"included", len(included), "dropped", len(chunks)-len(included))
			break
		}
		if budget+cost > a.maxTokens {
			a.logger.Warn("top-ranked passage exceeds prompt budget, including anyway",
				"budget", a.maxTokens, "cost", budget+cost)
		}

		passages = append(passages, passage)
		included = append(included, scored.Chunk)
		budget += cost
	}

	text := fmt.Sprintf(promptTemplate, strings.Join(passages, passageSeparator), escapedQuery)

	return &Prompt{
		Text:     text,
		Included: included,
	}, nil
}

// escapeTags neutralizes angle brackets so document text can't close or open
// the prompt's structural sections.
func escapeTags(text string) string {
	text = strings.ReplaceAll(text, "<", "&lt;")
	return strings.ReplaceAll(text, ">", "&gt;")
}
