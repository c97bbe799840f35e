package utils

// OnlyDigits keeps ASCII digits only ("529.982.247-25" -> "52998224725").
func OnlyDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}

// IsCPFOrCNPJ reports whether s, punctuated or not, is a valid Brazilian CPF
// (11 digits) or CNPJ (14 digits).
func IsCPFOrCNPJ(s string) bool {
	d := OnlyDigits(s)
	switch len(d) {
	case 11:
		return IsCPF(d)
	case 14:
		return IsCNPJ(d)
	}
	return false
}

func IsCPF(s string) bool {
	d := OnlyDigits(s)
	if len(d) != 11 || allSame(d) {
		return false
	}
	return checkDigit(d[:9], weights(10, 9)) == int(d[9]-'0') &&
		checkDigit(d[:10], weights(11, 10)) == int(d[10]-'0')
}

func IsCNPJ(s string) bool {
	d := OnlyDigits(s)
	if len(d) != 14 || allSame(d) {
		return false
	}
	w1 := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	w2 := append([]int{6}, w1...)
	return checkDigit(d[:12], w1) == int(d[12]-'0') &&
		checkDigit(d[:13], w2) == int(d[13]-'0')
}

// weights returns start, start-1, ... n values.
func weights(start, n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = start - i
	}
	return w
}

// 模 11 校验位
func checkDigit(digits string, w []int) int {
	sum := 0
	for i, r := range digits {
		sum += int(r-'0') * w[i]
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}
