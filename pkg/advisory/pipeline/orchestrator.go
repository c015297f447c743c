package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"kisan-advisory-be/internal/constant"
	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/pkg/advisory/retrieval"
	"kisan-advisory-be/pkg/advisory/safety"
	"kisan-advisory-be/pkg/advisory/variety"
	"kisan-advisory-be/pkg/errorsx"
	"kisan-advisory-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const logModule = "pipeline"

// ErrStageFailed marks a request that exhausted every fallback.
var ErrStageFailed = errors.New("advisory pipeline failed")

// Retriever looks up evidence in the per-crop corpus.
type Retriever interface {
	Retrieve(ctx context.Context, crop, question string, k int) ([]store.RAGResult, error)
	HasCorpus(ctx context.Context, crop string) (bool, error)
}

// VarietySource is the curated variety dataset.
type VarietySource interface {
	Lookup(crop, state string) (variety.Entry, bool)
}

// Policy holds the per-stage budgets and output limits.
type Policy struct {
	AggregationTimeout   time.Duration
	DecompositionTimeout time.Duration
	GenerationTimeout    time.Duration
	AuditTimeout         time.Duration
	RetrievalTimeout     time.Duration
	K                    int
	MaxQuestions         int
	MaxLength            int
	Concurrency          int
	MaxVarieties         int
}

func DefaultPolicy() Policy {
	return Policy{
		AggregationTimeout:   90 * time.Second,
		DecompositionTimeout: 60 * time.Second,
		GenerationTimeout:    120 * time.Second,
		AuditTimeout:         90 * time.Second,
		RetrievalTimeout:     60 * time.Second,
		K:                    5,
		MaxQuestions:         6,
		MaxLength:            4000,
		Concurrency:          4,
		MaxVarieties:         5,
	}
}

// Budget is the longest a request can run when every stage spends its full
// timeout, fallbacks included.
func (p Policy) Budget() time.Duration {
	rag := 2*p.AggregationTimeout + p.DecompositionTimeout + p.RetrievalTimeout + 2*p.GenerationTimeout + p.AuditTimeout
	knowledge := 2*p.AggregationTimeout + p.DecompositionTimeout + p.GenerationTimeout + 2*p.AuditTimeout
	if knowledge > rag {
		return knowledge
	}
	return rag
}

// Orchestrator drives one request through the reasoning stages. It is safe
// for concurrent use; all request state lives in a PipelineContext.
type Orchestrator struct {
	reasoner  Reasoner
	retriever Retriever
	varieties VarietySource
	safety    *safety.Table
	policy    Policy
	logger    logger.ILogger
	audit     logger.ILogger
	tracer    trace.Tracer
}

func NewOrchestrator(
	reasoner Reasoner,
	retriever Retriever,
	varieties VarietySource,
	table *safety.Table,
	policy Policy,
	log logger.ILogger,
	audit logger.ILogger,
) *Orchestrator {
	if audit == nil {
		audit = logger.NewNopLogger()
	}
	if policy.Concurrency <= 0 {
		policy.Concurrency = 1
	}
	return &Orchestrator{
		reasoner:  reasoner,
		retriever: retriever,
		varieties: varieties,
		safety:    table,
		policy:    policy,
		logger:    log,
		audit:     audit,
		tracer:    otel.Tracer("kisan-advisory/pipeline"),
	}
}

// Run executes the request. A non-nil error always comes with a Result whose
// Outcome is OutcomeRetry; the caller should keep the crop and ask the farmer
// to try again.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("request_id", req.ID.String()),
		attribute.String("crop", req.Crop),
		attribute.String("kind", string(req.Kind)),
	))
	defer span.End()

	pc := newPipelineContext(req)

	var (
		res *Result
		err error
	)
	switch req.Kind {
	case KindVariety:
		res, err = o.runVariety(ctx, req, pc)
	default:
		res, err = o.runAdvice(ctx, req, pc)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStageFailed, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		res = &Result{Outcome: OutcomeRetry, Path: PathAborted, Text: constant.ReplyTryAgain, Context: pc}
	}
	res.Duration = time.Since(start)
	span.SetAttributes(attribute.String("outcome", string(res.Outcome)), attribute.String("path", string(res.Path)))

	o.audit.Info(logModule, "Advisory finished", map[string]interface{}{
		"request_id":     req.ID.String(),
		"user_id":        req.UserID,
		"crop":           req.Crop,
		"district":       req.District,
		"path":           res.Path,
		"outcome":        res.Outcome,
		"issues":         pc.AggregatedIssues,
		"questions":      pc.Questions,
		"missing":        pc.Missing,
		"warnings":       pc.SafetyWarnings,
		"removed":        pc.Removed,
		"draft":          pc.DraftResponse,
		"final":          pc.FinalResponse,
		"duration_ms":    res.Duration.Milliseconds(),
		"classification": pc.Classification,
	})
	return res, err
}

type aggregationReply struct {
	Classification string   `json:"classification"`
	DetectedCrop   string   `json:"detected_crop"`
	Issues         []string `json:"issues"`
}

type decompositionReply struct {
	Questions []string `json:"questions"`
}

func (o *Orchestrator) runAdvice(ctx context.Context, req Request, pc *PipelineContext) (*Result, error) {
	agg, err := o.aggregate(ctx, req)
	if err != nil {
		return nil, err
	}
	pc.Classification = Classification(agg.Classification)
	if !pc.Classification.valid() {
		pc.Classification = ClassOnTopic
	}
	pc.DetectedCrop = strings.TrimSpace(agg.DetectedCrop)

	switch pc.Classification {
	case ClassDifferentCrop:
		if pc.DetectedCrop != "" && !strings.EqualFold(pc.DetectedCrop, req.Crop) {
			return &Result{Outcome: OutcomeRedirect, Path: PathRedirect, Context: pc,
				Text: fmt.Sprintf(constant.ReplyDifferentCrop, pc.DetectedCrop, req.Crop)}, nil
		}
		pc.Classification = ClassOnTopic
	case ClassContactRequest:
		return &Result{Outcome: OutcomeContact, Path: PathContact, Context: pc}, nil
	}

	pc.AggregatedIssues = cleanList(agg.Issues)
	if len(pc.AggregatedIssues) == 0 {
		pc.AggregatedIssues = rawTexts(req.Queries)
	}
	if len(pc.AggregatedIssues) == 0 {
		return nil, errorsx.Wrap(errors.New("aggregation produced no issues"), errorsx.ReasonProtocolViolation)
	}

	pc.Questions = o.decompose(ctx, req.Crop, pc.AggregatedIssues)

	if pc.Classification == ClassGeneralQuestion {
		return o.runKnowledge(ctx, req, pc)
	}
	has, err := o.retriever.HasCorpus(ctx, req.Crop)
	if err != nil {
		o.logger.Warn(logModule, "Corpus lookup failed, answering without retrieval", map[string]interface{}{
			"crop":  req.Crop,
			"error": err.Error(),
		})
	}
	if err != nil || !has {
		return o.runKnowledge(ctx, req, pc)
	}

	items, err := o.retrieve(ctx, req.Crop, pc)
	if err != nil {
		return nil, err
	}

	gen := GenerationPayload{
		Crop:     req.Crop,
		District: req.District,
		Items:    items,
		Warnings: o.safety.WarningLines(warnedChemicals(pc.SafetyWarnings), req.Crop),
	}
	draft, err := o.call(ctx, gen, o.policy.GenerationTimeout, false)
	if err != nil {
		o.logger.Warn(logModule, "Generation failed, retrying with reduced evidence", map[string]interface{}{
			"request_id": req.ID.String(),
			"error":      err.Error(),
		})
		draft, err = o.call(ctx, gen.reduced(), o.policy.GenerationTimeout, false)
		if err != nil {
			return nil, err
		}
	}
	pc.DraftResponse = draft

	final := o.finalAudit(ctx, req.Crop, draft)
	return o.answer(pc, PathRAG, final), nil
}

func (o *Orchestrator) aggregate(ctx context.Context, req Request) (aggregationReply, error) {
	payload := AggregationPayload{
		Crop:     req.Crop,
		District: req.District,
		Category: req.Category,
		Inputs:   req.Queries,
	}

	var reply aggregationReply
	raw, err := o.call(ctx, payload, o.policy.AggregationTimeout, true)
	if err == nil {
		if err = decodeJSON(raw, &reply); err == nil {
			return reply, nil
		}
	}
	o.logger.Warn(logModule, "Aggregation failed, retrying with text only", map[string]interface{}{
		"request_id": req.ID.String(),
		"error":      err.Error(),
	})

	payload.TextOnly = true
	if !payload.hasText() {
		return reply, errorsx.Wrap(fmt.Errorf("aggregation: %w", err), errorsx.ReasonTransientUpstream)
	}
	raw, err = o.call(ctx, payload, o.policy.AggregationTimeout, true)
	if err != nil {
		return reply, err
	}
	reply = aggregationReply{}
	if err := decodeJSON(raw, &reply); err != nil {
		return reply, errorsx.Wrap(fmt.Errorf("aggregation: %w", err), errorsx.ReasonProtocolViolation)
	}
	return reply, nil
}

func (o *Orchestrator) decompose(ctx context.Context, crop string, issues []string) []string {
	if len(issues) == 1 && !looksCompound(issues[0]) {
		return issues
	}

	var reply decompositionReply
	raw, err := o.call(ctx, DecompositionPayload{Crop: crop, Issues: issues}, o.policy.DecompositionTimeout, true)
	if err == nil {
		err = decodeJSON(raw, &reply)
	}
	questions := dedupe(cleanList(reply.Questions))
	if err != nil || len(questions) == 0 {
		o.logger.Warn(logModule, "Decomposition failed, splitting locally", map[string]interface{}{
			"crop":  crop,
			"error": fmt.Sprint(err),
		})
		return localDecompose(crop, issues, o.policy.MaxQuestions)
	}
	if o.policy.MaxQuestions > 0 && len(questions) > o.policy.MaxQuestions {
		questions = questions[:o.policy.MaxQuestions]
	}
	return questions
}

// retrieve fans out one lookup per question. A question with no evidence is
// MISSING; any other failure aborts the request.
func (o *Orchestrator) retrieve(ctx context.Context, crop string, pc *PipelineContext) ([]GroundedItem, error) {
	ctx, span := o.tracer.Start(ctx, "pipeline."+string(StageRetrieval))
	defer span.End()

	if o.policy.RetrievalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.policy.RetrievalTimeout)
		defer cancel()
	}

	items := make([]GroundedItem, len(pc.Questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.policy.Concurrency)
	for i, q := range pc.Questions {
		i, q := i, q
		g.Go(func() error {
			evidence, err := o.retriever.Retrieve(gctx, crop, q, o.policy.K)
			if errors.Is(err, retrieval.ErrNoEvidence) {
				items[i] = GroundedItem{Question: q}
				return nil
			}
			if err != nil {
				return fmt.Errorf("retrieve %q: %w", q, err)
			}
			items[i] = GroundedItem{Question: q, Evidence: evidence}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errorsx.Reason(err) == errorsx.ReasonUnknown {
			err = errorsx.Wrap(err, errorsx.ReasonStoreUnavailable)
		}
		return nil, err
	}

	for i := range items {
		items[i].Evidence = o.safety.Annotate(items[i].Evidence, crop)
		if !items[i].Found() {
			pc.Missing = append(pc.Missing, items[i].Question)
			continue
		}
		pc.RAGEvidence[items[i].Question] = items[i].Evidence
		for _, ev := range items[i].Evidence {
			if len(ev.SafetyWarnings) > 0 {
				// chunks of one source share its id
				pc.SafetyWarnings[ev.SourceID] = mergeNames(pc.SafetyWarnings[ev.SourceID], ev.SafetyWarnings)
			}
		}
	}
	span.SetAttributes(attribute.Int("missing", len(pc.Missing)))
	return items, nil
}

func (o *Orchestrator) runKnowledge(ctx context.Context, req Request, pc *PipelineContext) (*Result, error) {
	draft, err := o.call(ctx, KnowledgePayload{
		Crop:      req.Crop,
		District:  req.District,
		Category:  req.Category,
		Questions: pc.Questions,
	}, o.policy.GenerationTimeout, false)
	if err != nil {
		return nil, err
	}
	pc.DraftResponse = o.selfAudit(ctx, req.Crop, draft)

	final := o.finalAudit(ctx, req.Crop, pc.DraftResponse)
	return o.answer(pc, PathKnowledge, final), nil
}

func (o *Orchestrator) runVariety(ctx context.Context, req Request, pc *PipelineContext) (*Result, error) {
	if o.varieties != nil {
		if entry, ok := o.varieties.Lookup(req.Crop, req.State); ok {
			pc.DraftResponse = entry.Render(o.policy.MaxVarieties)
			return o.answer(pc, PathVariety, pc.DraftResponse), nil
		}
	}

	draft, err := o.call(ctx, VarietyPayload{Crop: req.Crop, District: req.District, State: req.State}, o.policy.GenerationTimeout, false)
	if err != nil {
		return nil, err
	}
	pc.DraftResponse = o.selfAudit(ctx, req.Crop, draft)

	final := o.finalAudit(ctx, req.Crop, pc.DraftResponse)
	return o.answer(pc, PathVarietyAI, final), nil
}

func (o *Orchestrator) selfAudit(ctx context.Context, crop, draft string) string {
	out, err := o.call(ctx, SelfAuditPayload{Crop: crop, Draft: draft}, o.policy.AuditTimeout, false)
	if err != nil {
		o.logger.Warn(logModule, "Self audit failed, keeping draft", map[string]interface{}{
			"crop":  crop,
			"error": err.Error(),
		})
		return draft
	}
	return out
}

// finalAudit falls back to the draft; the deterministic guard still runs on it.
func (o *Orchestrator) finalAudit(ctx context.Context, crop, draft string) string {
	out, err := o.call(ctx, FinalAuditPayload{
		Crop:        crop,
		Draft:       draft,
		Instruction: o.safety.ComplianceInstruction(crop),
		MaxLength:   o.policy.MaxLength,
	}, o.policy.AuditTimeout, false)
	if err != nil {
		o.logger.Warn(logModule, "Final audit failed, using local audit", map[string]interface{}{
			"crop":  crop,
			"error": err.Error(),
		})
		return draft
	}
	return out
}

func (o *Orchestrator) answer(pc *PipelineContext, path Path, text string) *Result {
	pc.FinalResponse = o.finalize(pc, text)
	return &Result{Outcome: OutcomeAnswered, Path: path, Text: pc.FinalResponse, Context: pc}
}

// finalize is the last gate before delivery: strip banned recommendations,
// fit the channel, then verify nothing leaked.
func (o *Orchestrator) finalize(pc *PipelineContext, text string) string {
	crop := pc.Crop

	enforced := o.safety.Enforce(text, crop)
	pc.Removed = mergeNames(pc.Removed, enforced.Removed)
	if enforced.Suppressed {
		pc.Suppressed = true
		return enforced.Text
	}

	var note string
	if len(pc.Missing) > 0 && !strings.Contains(enforced.Text, constant.MissingEvidencePhrase) {
		note = fmt.Sprintf(constant.ReplyMissingTopics, "• "+strings.Join(pc.Missing, "\n• "))
	}
	limit := o.policy.MaxLength
	if note != "" && limit > 0 {
		// the note may take at most half of the message
		if utf8.RuneCountInString(note) > limit/2 && limit/2 > 0 {
			note = Fit(note, limit/2)
		}
		limit -= utf8.RuneCountInString(note) + 2
		if limit < 1 {
			limit = 1
		}
	}
	out := Fit(enforced.Text, limit)
	if note != "" {
		out += "\n\n" + note
	}

	if leaks := o.safety.Leaks(out, crop); len(leaks) > 0 {
		again := o.safety.Enforce(out, crop)
		pc.Removed = mergeNames(pc.Removed, again.Removed)
		if again.Suppressed || len(o.safety.Leaks(again.Text, crop)) > 0 {
			o.logger.Error(logModule, "Banned chemical survived enforcement, suppressing answer", map[string]interface{}{
				"crop":  crop,
				"leaks": leaks,
			})
			pc.Suppressed = true
			return safety.GenericConsultResponse(crop)
		}
		out = again.Text
	}
	return out
}

// call runs one stage under its own span.
func (o *Orchestrator) call(ctx context.Context, p Payload, timeout time.Duration, asJSON bool) (string, error) {
	ctx, span := o.tracer.Start(ctx, "pipeline."+string(p.Stage()))
	defer span.End()

	c := NewCall(p, timeout)
	c.JSON = asJSON
	out, err := o.reasoner.Invoke(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return out, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func rawTexts(queries []store.QueryInput) []string {
	var out []string
	for _, q := range queries {
		if t := strings.TrimSpace(q.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func warnedChemicals(warnings map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, names := range warnings {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Strings(out)
	return out
}

func mergeNames(dst, src []string) []string {
	for _, s := range src {
		found := false
		for _, d := range dst {
			if d == s {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}
