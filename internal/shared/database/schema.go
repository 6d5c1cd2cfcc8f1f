package database

// Balances are guarded by CHECK constraints so no write path can take them below zero.
const schema = `
CREATE TABLE IF NOT EXISTS user_credits (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL UNIQUE,
    free_generations_remaining INTEGER NOT NULL DEFAULT 0,
    paid_credits_cents BIGINT NOT NULL DEFAULT 0,
    total_generations INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT user_credits_free_non_negative CHECK (free_generations_remaining >= 0),
    CONSTRAINT user_credits_paid_non_negative CHECK (paid_credits_cents >= 0)
);

CREATE TABLE IF NOT EXISTS generation_attempts (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    selected_style VARCHAR(32) NOT NULL,
    prompt_used TEXT NOT NULL,
    is_free_attempt BOOLEAN NOT NULL,
    cost_cents BIGINT NOT NULL DEFAULT 0,
    status VARCHAR(16) NOT NULL,
    failure_reason TEXT NOT NULL DEFAULT '',
    generated_image_url TEXT NOT NULL DEFAULT '',
    original_image_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    finished_at TIMESTAMPTZ,
    CONSTRAINT generation_attempts_status CHECK (status IN ('pending', 'completed', 'failed')),
    CONSTRAINT generation_attempts_cost_non_negative CHECK (cost_cents >= 0)
);

CREATE INDEX IF NOT EXISTS idx_generation_attempts_user_created
    ON generation_attempts (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS orders (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    attempt_id UUID REFERENCES generation_attempts(id),
    original_image_url TEXT NOT NULL DEFAULT '',
    colored_image_url TEXT NOT NULL,
    selected_style VARCHAR(32) NOT NULL,
    print_size VARCHAR(16) NOT NULL,
    product_type VARCHAR(16) NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    unit_price_cents BIGINT NOT NULL,
    shipping_cents BIGINT NOT NULL,
    total_cents BIGINT NOT NULL,
    shipping_info JSONB NOT NULL,
    status VARCHAR(32) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_user_created
    ON orders (user_id, created_at DESC);
`
