// Package testkit provides deterministic synthetic churn datasets and
// lightweight in-memory fakes for service tests.
package testkit

import (
	"bytes"
	"fmt"
	"math/rand"
	"strconv"

	"churnscope/domain/tabular"
)

// ChurnColumns is the fixed schema of the synthetic dataset.
var ChurnColumns = []string{
	"CustomerID", "Age", "Gender", "Tenure_Months", "Contract_Type",
	"Payment_Method", "Monthly_Charges", "Total_Charges",
	"Num_Support_Calls", "Avg_Login_Per_Month", "Churn",
}

// GenerateChurnFrame builds a synthetic customer dataset whose churn label
// correlates with tenure, contract type and support-call volume.
func GenerateChurnFrame(n int, seed int64) *tabular.Frame {
	rnd := rand.New(rand.NewSource(seed))

	cols := make([]tabular.Column, len(ChurnColumns))
	for i, name := range ChurnColumns {
		cols[i] = tabular.Column{Name: name, Values: make([]string, n)}
	}

	contracts := []string{"Month-to-month", "One year", "Two year"}
	payments := []string{"Electronic check", "Mailed check", "Bank transfer", "Credit card"}

	for i := 0; i < n; i++ {
		tenure := rnd.Intn(71) + 1
		contract := contracts[weightedPick(rnd, []float64{0.5, 0.3, 0.2})]
		monthly := 30 + rnd.Float64()*90
		supportCalls := rnd.Intn(6)

		prob := 0.40
		switch {
		case tenure > 48:
			prob -= 0.25
		case tenure > 24:
			prob -= 0.15
		case tenure < 6:
			prob += 0.10
		}
		switch contract {
		case "Month-to-month":
			prob += 0.15
		case "Two year":
			prob -= 0.15
		}
		if supportCalls > 3 {
			prob += 0.25
		}
		if supportCalls == 0 {
			prob -= 0.05
		}
		if monthly > 100 {
			prob += 0.05
		}
		prob += rnd.NormFloat64() * 0.05
		if prob < 0 {
			prob = 0
		}
		if prob > 1 {
			prob = 1
		}

		churn := "0"
		if rnd.Float64() < prob {
			churn = "1"
		}

		cols[0].Values[i] = fmt.Sprintf("CUST_%d", 1000+i)
		cols[1].Values[i] = strconv.Itoa(18 + rnd.Intn(57))
		cols[2].Values[i] = []string{"Male", "Female"}[rnd.Intn(2)]
		cols[3].Values[i] = strconv.Itoa(tenure)
		cols[4].Values[i] = contract
		cols[5].Values[i] = payments[rnd.Intn(len(payments))]
		cols[6].Values[i] = strconv.FormatFloat(monthly, 'f', 2, 64)
		cols[7].Values[i] = strconv.FormatFloat(monthly*float64(tenure), 'f', 2, 64)
		cols[8].Values[i] = strconv.Itoa(supportCalls)
		cols[9].Values[i] = strconv.Itoa(1 + rnd.Intn(29))
		cols[10].Values[i] = churn
	}

	f, err := tabular.NewFrame(cols)
	if err != nil {
		panic(err)
	}
	return f
}

// GenerateChurnCSV renders the synthetic dataset as CSV bytes.
func GenerateChurnCSV(n int, seed int64) []byte {
	f := GenerateChurnFrame(n, seed)
	var buf bytes.Buffer
	if err := tabular.WriteCSV(f, &buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func weightedPick(rnd *rand.Rand, weights []float64) int {
	r := rnd.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}
