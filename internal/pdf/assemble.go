package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"estate-intake/internal/domain"
)

// Page geometry of the pre-printed base document. The dynamic block
// replaces source pages 5..8; everything before is copied first,
// everything after follows the dynamic block. These numbers are tied
// to one physical revision of the printed form, as is the overlay
// skip-set below: revalidate both whenever the base document changes.
const (
	leadingStaticPages = 4 // source pages 1..4 open the document
	trailingStartPage  = 9 // source pages 9..N close it
)

// overlaySkipPages lists 1-indexed source pages whose own printed
// signature blocks must not be obscured by the overlay stamp.
// Configuration data for this document revision, not a computed rule.
var overlaySkipPages = map[int]bool{
	1:  true,
	2:  true,
	18: true,
	19: true,
	20: true,
	26: true,
}

// staticPage is one source page in the merge plan.
type staticPage struct {
	Number int // 1-indexed source page number
	Stamp  bool
}

// mergePlan fixes the page order of the assembled document before any
// PDF bytes move: leading static pages, the dynamic fragments in slot
// order with the declaration page last, trailing static pages.
type mergePlan struct {
	SourcePages  int
	Leading      []staticPage
	DynamicCount int
	Trailing     []staticPage
}

// buildMergePlan computes the plan for a source of sourcePages pages
// and dynamicCount rendered fragments. hasOverlay toggles stamping;
// the skip-set is honored either way.
func buildMergePlan(sourcePages, dynamicCount int, hasOverlay bool) mergePlan {
	p := mergePlan{SourcePages: sourcePages, DynamicCount: dynamicCount}

	for n := 1; n <= leadingStaticPages && n <= sourcePages; n++ {
		p.Leading = append(p.Leading, staticPage{Number: n, Stamp: hasOverlay && !overlaySkipPages[n]})
	}
	for n := trailingStartPage; n <= sourcePages; n++ {
		p.Trailing = append(p.Trailing, staticPage{Number: n, Stamp: hasOverlay && !overlaySkipPages[n]})
	}
	return p
}

// TotalPages is the page count of the assembled document.
func (p mergePlan) TotalPages() int {
	return len(p.Leading) + p.DynamicCount + len(p.Trailing)
}

// stampSelection returns the source page numbers receiving the overlay,
// in pdfcpu page-selection form.
func (p mergePlan) stampSelection() []string {
	var sel []string
	for _, pg := range p.Leading {
		if pg.Stamp {
			sel = append(sel, strconv.Itoa(pg.Number))
		}
	}
	for _, pg := range p.Trailing {
		if pg.Stamp {
			sel = append(sel, strconv.Itoa(pg.Number))
		}
	}
	return sel
}

// Assembler orchestrates one generation request: render the dynamic
// pages and the overlay through the injected renderer, release the
// renderer, then merge. Stages run strictly sequentially; the renderer
// owns a single browser process and concurrent tabs against a
// resource-constrained binary are unreliable.
type Assembler struct {
	templater *Templater
	assets    *Assets
}

func NewAssembler(assets *Assets) *Assembler {
	return &Assembler{
		templater: NewTemplater(assets),
		assets:    assets,
	}
}

// Generate produces the final merged PDF. The renderer is released
// exactly once on every path, and always before the merge begins: no
// browser process outlives the render stages. No partial PDF is ever
// returned.
func (a *Assembler) Generate(ctx context.Context, renderer PageRenderer, source []byte, form domain.ApplicationForm, applicantCount int) ([]byte, error) {
	released := false
	release := func() {
		if !released {
			released = true
			renderer.Close()
		}
	}
	defer release()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	sourcePages, err := api.PageCount(bytes.NewReader(source), conf)
	if err != nil {
		return nil, genErr(KindMerge, "load_source", "", fmt.Errorf("base document page count: %w", err))
	}

	fragments, err := a.renderDynamicPages(ctx, renderer, form, applicantCount)
	if err != nil {
		return nil, err
	}

	overlayFragment, err := a.renderOverlay(ctx, renderer, form)
	if err != nil {
		return nil, err
	}

	// Hard ordering barrier: all rendering is finished, release the
	// browser before any merge work begins.
	release()

	plan := buildMergePlan(sourcePages, len(fragments), overlayFragment != nil)
	log.Printf("[PDF] merge plan: %d source pages, %d dynamic pages, %d output pages",
		sourcePages, plan.DynamicCount, plan.TotalPages())

	return executeMergePlan(plan, source, fragments, overlayFragment, conf)
}

// renderDynamicPages renders each eligible applicant slot followed by
// the declaration page, in order. Slot 2 additionally requires the
// caller-declared applicant count to reach it; slot 3 is reachable
// regardless ("skip second applicant" mode).
func (a *Assembler) renderDynamicPages(ctx context.Context, renderer PageRenderer, form domain.ApplicationForm, applicantCount int) ([][]byte, error) {
	var fragments [][]byte

	for slot := domain.SlotFirst; slot <= domain.SlotThird; slot++ {
		if slot == domain.SlotSecond && applicantCount < 2 {
			continue
		}
		applicant := form.Applicant(slot)
		if !applicant.HasData(slot) {
			continue
		}

		pageName := fmt.Sprintf("applicant_%d", slot)
		html, err := a.templater.RenderApplicantPage(applicant, slot, form)
		if err != nil {
			return nil, genErr(KindRenderProcess, "render_dynamic", pageName, err)
		}
		if html == "" {
			continue
		}

		frag, err := renderer.RenderPage(ctx, html)
		if err != nil {
			return nil, stageErr(err, "render_dynamic", pageName)
		}
		fragments = append(fragments, frag)
	}

	html, err := a.templater.RenderDeclarationPage(form)
	if err != nil {
		return nil, genErr(KindRenderProcess, "render_dynamic", "declaration", err)
	}
	frag, err := renderer.RenderPage(ctx, html)
	if err != nil {
		return nil, stageErr(err, "render_dynamic", "declaration")
	}
	fragments = append(fragments, frag)

	return fragments, nil
}

// renderOverlay builds the one-page signature overlay fragment, or nil
// when no applicant signed.
func (a *Assembler) renderOverlay(ctx context.Context, renderer PageRenderer, form domain.ApplicationForm) ([]byte, error) {
	html, err := RenderSignatureOverlay(form)
	if err != nil {
		return nil, genErr(KindRenderProcess, "render_overlay", "overlay", err)
	}
	if html == "" {
		return nil, nil
	}
	frag, err := renderer.RenderPage(ctx, html)
	if err != nil {
		return nil, stageErr(err, "render_overlay", "overlay")
	}
	return frag, nil
}

// stageErr re-tags a renderer error with the assembly stage and page
// it occurred in, preserving the kind the renderer assigned.
func stageErr(err error, stage, page string) error {
	kind := KindOf(err)
	if kind == "" {
		kind = KindRenderProcess
	}
	return genErr(kind, stage, page, err)
}

// executeMergePlan realizes the plan with pdfcpu: stamp the overlay
// onto eligible source pages as a PDF watermark (embedded as a form
// XObject, preserving the overlay's vector content), trim the leading
// and trailing ranges, then merge leading + fragments + trailing.
func executeMergePlan(plan mergePlan, source []byte, fragments [][]byte, overlay []byte, conf *model.Configuration) ([]byte, error) {
	stamped := source
	if overlay != nil {
		if sel := plan.stampSelection(); len(sel) > 0 {
			var err error
			stamped, err = stampOverlay(source, overlay, sel, conf)
			if err != nil {
				return nil, genErr(KindMerge, "stamp_overlay", "", err)
			}
		}
	}

	var readers []io.ReadSeeker

	if len(plan.Leading) > 0 {
		var lead bytes.Buffer
		rng := fmt.Sprintf("1-%d", plan.Leading[len(plan.Leading)-1].Number)
		if err := api.Trim(bytes.NewReader(stamped), &lead, []string{rng}, conf); err != nil {
			return nil, genErr(KindMerge, "merge_leading", "", fmt.Errorf("trim pages %s: %w", rng, err))
		}
		readers = append(readers, bytes.NewReader(lead.Bytes()))
	}

	for _, frag := range fragments {
		readers = append(readers, bytes.NewReader(frag))
	}

	if len(plan.Trailing) > 0 {
		var trail bytes.Buffer
		rng := fmt.Sprintf("%d-%d", trailingStartPage, plan.SourcePages)
		if err := api.Trim(bytes.NewReader(stamped), &trail, []string{rng}, conf); err != nil {
			return nil, genErr(KindMerge, "merge_trailing", "", fmt.Errorf("trim pages %s: %w", rng, err))
		}
		readers = append(readers, bytes.NewReader(trail.Bytes()))
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, conf); err != nil {
		return nil, genErr(KindMerge, "merge", "", fmt.Errorf("merge: %w", err))
	}
	return out.Bytes(), nil
}

// stampOverlay applies the one-page overlay fragment onto the selected
// source pages. pdfcpu's PDF watermark source is file-based, so the
// fragment is spooled to a temp file for the duration of the stamp.
func stampOverlay(source, overlay []byte, selection []string, conf *model.Configuration) ([]byte, error) {
	tmp, err := os.CreateTemp("", "signature-overlay-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("spool overlay: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(overlay); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("spool overlay: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("spool overlay: %w", err)
	}

	wm, err := api.PDFWatermark(tmp.Name()+":1", "pos:c, scale:1 abs, rot:0", true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("overlay watermark: %w", err)
	}

	var stamped bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(source), &stamped, selection, wm, conf); err != nil {
		return nil, fmt.Errorf("stamp overlay: %w", err)
	}
	return stamped.Bytes(), nil
}
