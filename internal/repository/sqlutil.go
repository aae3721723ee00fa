package repository

import "strings"

// placeholders returns n comma separated "?" markers for an IN clause.
func placeholders(n int) string {
    if n <= 0 {
        return ""
    }
    return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(vals []string) []interface{} {
    args := make([]interface{}, len(vals))
    for i, v := range vals {
        args[i] = v
    }
    return args
}
