package report

import (
	"fmt"
	"ringkas/internal/metrics"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// RunInfo describes the run a report belongs to.
type RunInfo struct {
	RunID       string
	Provider    string
	Model       string
	Reference   string
	Template    string
	GeneratedAt string
}

func f4(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func meanStd(s metrics.Stat) string {
	return fmt.Sprintf("%s ± %s", f4(s.Mean), f4(s.Std))
}

func metricsComparison(r metrics.AggregateReport) string {
	var sb strings.Builder
	sb.WriteString("# Metrics comparison\n\n")

	t := newTable("Metric", "Precision", "Recall", "F1")
	t.add("ROUGE-1", meanStd(r.Rouge.Rouge1.Precision), meanStd(r.Rouge.Rouge1.Recall), meanStd(r.Rouge.Rouge1.F1))
	t.add("ROUGE-2", meanStd(r.Rouge.Rouge2.Precision), meanStd(r.Rouge.Rouge2.Recall), meanStd(r.Rouge.Rouge2.F1))
	t.add("ROUGE-L", meanStd(r.Rouge.RougeL.Precision), meanStd(r.Rouge.RougeL.Recall), meanStd(r.Rouge.RougeL.F1))
	if r.Semantic.Available {
		t.add("Semantic", meanStd(r.Semantic.Precision), meanStd(r.Semantic.Recall), meanStd(r.Semantic.F1))
	}
	sb.WriteString(t.String())

	sb.WriteString("\n## BLEU\n\n")
	bt := newTable("Score", "P1", "P2", "P3", "P4", "BP", "Sys len", "Ref len")
	bt.add(
		f4(r.BLEU.Score),
		f4(r.BLEU.Precisions[0]), f4(r.BLEU.Precisions[1]),
		f4(r.BLEU.Precisions[2]), f4(r.BLEU.Precisions[3]),
		f4(r.BLEU.BP),
		strconv.Itoa(r.BLEU.SysLen), strconv.Itoa(r.BLEU.RefLen),
	)
	sb.WriteString(bt.String())

	sb.WriteString("\n## Headline scores\n\n")
	bars := []bar{
		{"ROUGE-1", r.Summary.Rouge1},
		{"ROUGE-2", r.Summary.Rouge2},
		{"ROUGE-L", r.Summary.RougeL},
		{"BLEU / 100", r.Summary.BLEU / 100},
	}
	if r.Semantic.Available {
		bars = append(bars, bar{"Semantic F1", r.Summary.SemanticF1})
	}
	sb.WriteString(barChart(bars, 1))

	if r.Semantic.Error != "" {
		fmt.Fprintf(&sb, "\nSemantic similarity failed and is reported as zero: %s\n", r.Semantic.Error)
	}

	return sb.String()
}

func groupAnalysis(title, keyName string, groups []metrics.Group) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	if len(groups) == 0 {
		sb.WriteString("No items.\n")
		return sb.String()
	}

	t := newTable(keyName, "Items", "Generated", "ROUGE-1", "ROUGE-2", "ROUGE-L", "Compression", "Pred. length")
	bars := make([]bar, 0, len(groups))
	for _, g := range groups {
		t.add(
			g.Key,
			strconv.Itoa(g.Count),
			strconv.Itoa(g.Generated),
			meanStd(g.Rouge1),
			meanStd(g.Rouge2),
			meanStd(g.RougeL),
			f4(g.CompressionRatio.Mean),
			f4(g.PredictionLength.Mean),
		)
		bars = append(bars, bar{g.Key, g.Rouge1.Mean})
	}
	sb.WriteString(t.String())

	fmt.Fprintf(&sb, "\n## ROUGE-1 by %s\n\n", strings.ToLower(keyName))
	sb.WriteString(barChart(bars, 1))

	sb.WriteString("\n## Items by " + strings.ToLower(keyName) + "\n\n")
	counts := make([]bar, 0, len(groups))
	for _, g := range groups {
		counts = append(counts, bar{g.Key, float64(g.Count)})
	}
	sb.WriteString(barChart(counts, 0))

	return sb.String()
}

type trend struct {
	name        string
	alpha, beta float64
	correlation float64
}

func fitTrend(name string, x, y []float64) trend {
	if len(x) < 2 {
		return trend{name: name}
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	return trend{
		name:        name,
		alpha:       alpha,
		beta:        beta,
		correlation: stat.Correlation(x, y, nil),
	}
}

func lengthAnalysis(r metrics.AggregateReport) string {
	var sb strings.Builder
	sb.WriteString("# Length analysis\n\n")

	var refLen, predLen, lengthRatio, rouge1 []float64
	for _, row := range r.Items {
		if !row.Generated || row.ReferenceLength == 0 {
			continue
		}
		refLen = append(refLen, float64(row.ReferenceLength))
		predLen = append(predLen, float64(row.PredictionLength))
		lengthRatio = append(lengthRatio, row.CompressionRatio)
		rouge1 = append(rouge1, row.Rouge1)
	}

	if len(refLen) == 0 {
		sb.WriteString("No generated summaries.\n")
		return sb.String()
	}

	t := newTable("Quantity", "Mean", "Std", "Min", "Median", "Max")
	for _, q := range []struct {
		name string
		s    metrics.Stat
	}{
		{"Reference length (words)", r.Descriptive.ReferenceLength},
		{"Prediction length (words)", r.Descriptive.PredictionLength},
		{"Length ratio", r.Descriptive.CompressionRatio},
		{"Word overlap", r.Descriptive.WordOverlap},
	} {
		t.add(q.name, f4(q.s.Mean), f4(q.s.Std), f4(q.s.Min), f4(q.s.Median), f4(q.s.Max))
	}
	sb.WriteString(t.String())

	sb.WriteString("\n## ROUGE-1 trends\n\n")
	tt := newTable("Predictor", "Intercept", "Slope", "Correlation")
	for _, tr := range []trend{
		fitTrend("Reference length", refLen, rouge1),
		fitTrend("Prediction length", predLen, rouge1),
		fitTrend("Length ratio", lengthRatio, rouge1),
	} {
		tt.add(tr.name, f4(tr.alpha), f4(tr.beta), f4(tr.correlation))
	}
	sb.WriteString(tt.String())

	sb.WriteString("\n## Length ratio distribution\n\n")
	sb.WriteString(barChart(histogram(lengthRatio, histBins), 0))

	return sb.String()
}

func summaryReport(r metrics.AggregateReport, info RunInfo, byCategory, bySource []metrics.Group) string {
	var sb strings.Builder
	sb.WriteString("# Summarization evaluation report\n\n")

	rt := newTable("Field", "Value")
	rt.add("Run", info.RunID)
	rt.add("Generated at", info.GeneratedAt)
	rt.add("Provider", info.Provider)
	rt.add("Model", info.Model)
	rt.add("Reference", info.Reference)
	rt.add("Template", info.Template)
	rt.add("Items", strconv.Itoa(r.TotalItems))
	rt.add("Successful summaries", strconv.Itoa(r.SuccessfulSummaries))
	rt.add("Success rate", f4(r.SuccessRate))
	sb.WriteString(rt.String())

	sb.WriteString("\n## Overall scores\n\n")
	ht := newTable("ROUGE-1", "ROUGE-2", "ROUGE-L", "BLEU", "Semantic F1")
	semantic := "n/a"
	if r.Semantic.Available {
		semantic = f4(r.Summary.SemanticF1)
	}
	ht.add(f4(r.Summary.Rouge1), f4(r.Summary.Rouge2), f4(r.Summary.RougeL), f4(r.Summary.BLEU), semantic)
	sb.WriteString(ht.String())

	sb.WriteString("\n## ROUGE-1 per category\n\n")
	ct := newTable("Category", "Items", "ROUGE-1")
	for _, g := range byCategory {
		ct.add(g.Key, strconv.Itoa(g.Count), f4(g.Rouge1.Mean))
	}
	sb.WriteString(ct.String())

	sb.WriteString("\n## ROUGE-1 per source\n\n")
	st := newTable("Source", "Items", "ROUGE-1")
	for _, g := range bySource {
		st.add(g.Key, strconv.Itoa(g.Count), f4(g.Rouge1.Mean))
	}
	sb.WriteString(st.String())

	var r1, r2, rl []float64
	for _, row := range r.Items {
		r1 = append(r1, row.Rouge1)
		r2 = append(r2, row.Rouge2)
		rl = append(rl, row.RougeL)
	}
	for _, d := range []struct {
		name   string
		values []float64
	}{{"ROUGE-1", r1}, {"ROUGE-2", r2}, {"ROUGE-L", rl}} {
		fmt.Fprintf(&sb, "\n## %s distribution\n\n", d.name)
		sb.WriteString(barChart(histogram(d.values, histBins), 0))
	}

	return sb.String()
}
